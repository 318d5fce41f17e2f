// SPDX-License-Identifier: MIT
package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarsOfColorOnly(t *testing.T) {
	v := VarsOf(ThemeView{AppBg: "#ffffff"})

	assert.Equal(t, "#ffffff", v.Theme.AppBg)
	assert.Equal(t, "#ffffff", v.Root[PropAppBg])
	assert.Equal(t, "#000000", v.Root["--auto-text-primary"])
	assert.Empty(t, v.Container)
	assert.Contains(t, v.Remove, PropAppBgImage)
	assert.Contains(t, v.Remove, "background-image")
	assert.Contains(t, v.Remove, "background-size")
}

func TestVarsOfWithImage(t *testing.T) {
	id := "m1"
	v := VarsOf(ThemeView{AppBg: "#400810", BackgroundImageMediaID: &id, BackgroundImageURL: "/r/pasta/media/m1"})

	assert.Empty(t, v.Remove)
	assert.Equal(t, `url("/r/pasta/media/m1")`, v.Root[PropAppBgImage])
	assert.Equal(t, "cover", v.Container["background-size"])
	assert.Equal(t, "#FFFFFF", v.Root["--auto-text-primary"])
}
