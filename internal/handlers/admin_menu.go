// SPDX-License-Identifier: MIT
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/menu"
)

// getAdminMenu returns the full tree, unavailable items included.
func (s *Server) getAdminMenu(c *gin.Context) {
	tree, err := s.menu.Tree(c.Request.Context(), restaurantOf(c).ID, false)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": tree})
}

func (s *Server) createSection(c *gin.Context) {
	var in menu.SectionInput
	if !bindJSON(c, &in) {
		return
	}
	sec, err := s.menu.CreateSection(c.Request.Context(), restaurantOf(c).ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"section": sec})
}

func (s *Server) updateSection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in menu.SectionInput
	if !bindJSON(c, &in) {
		return
	}
	sec, err := s.menu.UpdateSection(c.Request.Context(), restaurantOf(c).ID, id, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": sec})
}

func (s *Server) deleteSection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.menu.DeleteSection(c.Request.Context(), restaurantOf(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createCategory(c *gin.Context) {
	var in menu.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := s.menu.CreateCategory(c.Request.Context(), restaurantOf(c).ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in menu.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := s.menu.UpdateCategory(c.Request.Context(), restaurantOf(c).ID, id, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.menu.DeleteCategory(c.Request.Context(), restaurantOf(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// createItem checks the image reference before creating the item so a
// typo cannot leave a dangling media id.
func (s *Server) createItem(c *gin.Context) {
	var in menu.ItemInput
	if !bindJSON(c, &in) {
		return
	}
	if !s.checkItemImage(c, in.ImageMediaID) {
		return
	}
	item, err := s.menu.CreateItem(c.Request.Context(), restaurantOf(c).ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (s *Server) updateItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in menu.ItemInput
	if !bindJSON(c, &in) {
		return
	}
	if !s.checkItemImage(c, in.ImageMediaID) {
		return
	}
	item, err := s.menu.UpdateItem(c.Request.Context(), restaurantOf(c).ID, id, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (s *Server) checkItemImage(c *gin.Context, id *string) bool {
	if id == nil || *id == "" {
		return true
	}
	if _, err := s.media.Get(c.Request.Context(), restaurantOf(c).ID, *id); err != nil {
		validationFailed(c, map[string]string{"imageMediaId": "unknown media"})
		return false
	}
	return true
}

func (s *Server) setItemAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Available *bool `json:"available"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if body.Available == nil {
		validationFailed(c, map[string]string{"available": "required"})
		return
	}
	if err := s.menu.SetAvailable(c.Request.Context(), restaurantOf(c).ID, id, *body.Available); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "available": *body.Available})
}

func (s *Server) deleteItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.menu.DeleteItem(c.Request.Context(), restaurantOf(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reorder applies a drag-and-drop order. ids must list every sibling under
// parentId exactly once.
func (s *Server) reorder(c *gin.Context) {
	var body struct {
		Kind     string `json:"kind"`
		ParentID uint   `json:"parentId"`
		IDs      []uint `json:"ids"`
	}
	if !bindJSON(c, &body) {
		return
	}
	kind, err := menu.ParseKind(body.Kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.menu.Reorder(c.Request.Context(), restaurantOf(c).ID, kind, body.ParentID, body.IDs); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// move swaps an entry with its neighbor. moved is false at either end.
func (s *Server) move(c *gin.Context) {
	var body struct {
		Kind      string `json:"kind"`
		ID        uint   `json:"id"`
		Direction string `json:"direction"`
	}
	if !bindJSON(c, &body) {
		return
	}
	kind, err := menu.ParseKind(body.Kind)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	rid := restaurantOf(c).ID
	var moved bool
	switch body.Direction {
	case "up":
		moved, err = s.menu.MoveUp(ctx, rid, kind, body.ID)
	case "down":
		moved, err = s.menu.MoveDown(ctx, rid, kind, body.ID)
	default:
		jsonError(c, http.StatusBadRequest, "direction must be up or down")
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved})
}
