// SPDX-License-Identifier: MIT
package restaurants

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	r, err := Create(db, " Trattoria-9 ", "Trattoria Nove", "4821")
	require.NoError(t, err)

	assert.Equal(t, "trattoria-9", r.Slug)
	assert.Equal(t, "Trattoria Nove", r.Name)
	assert.Equal(t, "en", r.DefaultLanguage)
	assert.NotEqual(t, "4821", r.PINHash)
	assert.True(t, auth.CheckPIN("4821", r.PINHash))
}

func TestCreateNameDefaultsToSlug(t *testing.T) {
	db := setupTestDB(t)

	r, err := Create(db, "bistro", "  ", "1234")
	require.NoError(t, err)
	assert.Equal(t, "bistro", r.Name)
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(db, "bistro", "Bistro", "1234")
	require.NoError(t, err)

	_, err = Create(db, "bistro", "Other", "1234")
	assert.True(t, errors.Is(err, ErrSlugTaken))
}

func TestCreateRejectsSlugOfDeletedRestaurant(t *testing.T) {
	db := setupTestDB(t)

	r, err := Create(db, "bistro", "Bistro", "1234")
	require.NoError(t, err)
	require.NoError(t, Delete(db, r.ID))

	_, err = Create(db, "bistro", "Bistro again", "1234")
	assert.True(t, errors.Is(err, ErrSlugTaken))
}

func TestCreateRejectsBadPIN(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(db, "bistro", "Bistro", "12")
	assert.ErrorIs(t, err, auth.ErrInvalidPIN)
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"ab", "pasta", "a-1", "0123456789", "trattoria-nove"}
	for _, s := range valid {
		assert.NoError(t, ValidateSlug(s), s)
	}

	invalid := []string{"", "a", "-pasta", "pasta-", "Pasta", "pa_sta", "pa sta", "pasta.com",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	for _, s := range invalid {
		assert.ErrorIs(t, ValidateSlug(s), ErrInvalidSlug, s)
	}

	for _, s := range []string{"admin", "api", "metrics", "health"} {
		assert.ErrorIs(t, ValidateSlug(s), ErrReserved, s)
	}
}

func TestGetBySlugAndID(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, "findme", "Find Me", "1234")
	require.NoError(t, err)

	r, err := GetBySlug(db, "FINDME")
	require.NoError(t, err)
	assert.Equal(t, created.ID, r.ID)

	r, err = GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "findme", r.Slug)

	_, err = GetBySlug(db, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = GetByID(db, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersBySlug(t *testing.T) {
	db := setupTestDB(t)

	for _, slug := range []string{"zeta", "alpha", "mid"} {
		_, err := Create(db, slug, "", "1234")
		require.NoError(t, err)
	}

	list, err := List(db)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Slug)
	assert.Equal(t, "mid", list[1].Slug)
	assert.Equal(t, "zeta", list[2].Slug)
}

func TestDeleteHidesRestaurant(t *testing.T) {
	db := setupTestDB(t)

	r, err := Create(db, "gone", "Gone", "1234")
	require.NoError(t, err)

	require.NoError(t, Delete(db, r.ID))

	_, err = GetBySlug(db, "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, Delete(db, r.ID), ErrNotFound)
}

func TestSetPIN(t *testing.T) {
	db := setupTestDB(t)

	r, err := Create(db, "pins", "Pins", "1234")
	require.NoError(t, err)

	require.NoError(t, SetPIN(db, r.ID, "98765"))

	reloaded, err := GetByID(db, r.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPIN("98765", reloaded.PINHash))
	assert.False(t, auth.CheckPIN("1234", reloaded.PINHash))

	assert.ErrorIs(t, SetPIN(db, 999, "98765"), ErrNotFound)
}

func TestApplyUpdate(t *testing.T) {
	db := setupTestDB(t)

	r, err := Create(db, "upd", "Before", "1234")
	require.NoError(t, err)

	name := "After"
	lang := "it"
	logo := "logo-id"
	updated, err := Apply(db, r.ID, Update{
		Name:            &name,
		DefaultLanguage: &lang,
		Tagline:         models.Localized{"en": "Fresh pasta", "it": "Pasta fresca"},
		LogoMediaID:     &logo,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "it", updated.DefaultLanguage)
	require.NotNil(t, updated.LogoMediaID)

	empty := ""
	updated, err = Apply(db, r.ID, Update{LogoMediaID: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.LogoMediaID)
	assert.Equal(t, "Pasta fresca", updated.Tagline["it"])
}
