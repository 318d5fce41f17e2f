// SPDX-License-Identifier: MIT
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/feedback"
	"github.com/thatcatcamp/menukitty/internal/i18n"
	"github.com/thatcatcamp/menukitty/internal/menu"
	"github.com/thatcatcamp/menukitty/internal/models"
)

// welcomePage is the restaurant's landing page.
func (s *Server) welcomePage(c *gin.Context) {
	p, err := s.newPage(c, "Welcome", "welcome")
	if err != nil {
		s.pageError(c, err)
		return
	}
	s.renderPage(c, http.StatusOK, "welcome", p)
}

type menuBody struct {
	Sections []models.Section
	Query    string
	Results  []menu.SearchResult
}

// menuPage renders the available items, and search results when ?q= is
// given.
func (s *Server) menuPage(c *gin.Context) {
	p, err := s.newPage(c, "Menu", "menu")
	if err != nil {
		s.pageError(c, err)
		return
	}
	ctx := c.Request.Context()
	r := p.Restaurant

	tree, err := s.menu.Tree(ctx, r.ID, true)
	if err != nil {
		s.pageError(c, err)
		return
	}
	body := menuBody{Sections: tree, Query: c.Query("q")}
	if body.Query != "" {
		body.Results, err = s.menu.Search(ctx, r.ID, body.Query, p.Lang, r.DefaultLanguage)
		if err != nil {
			s.pageError(c, err)
			return
		}
	}

	p.Body = body
	s.renderPage(c, http.StatusOK, "menu", p)
}

// getMenu is the storefront menu as JSON.
func (s *Server) getMenu(c *gin.Context) {
	tree, err := s.menu.Tree(c.Request.Context(), restaurantOf(c).ID, true)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": tree})
}

func (s *Server) searchMenu(c *gin.Context) {
	r := restaurantOf(c)
	lang := i18n.FromRequest(c, r.DefaultLanguage)
	results, err := s.menu.Search(c.Request.Context(), r.ID, c.Query("q"), lang, r.DefaultLanguage)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type feedbackBody struct {
	Ratings []int
	Rating  int
	Name    string
	Message string
}

func newFeedbackBody(in feedback.Input) feedbackBody {
	if in.Rating == 0 {
		in.Rating = 5
	}
	return feedbackBody{
		Ratings: []int{5, 4, 3, 2, 1},
		Rating:  in.Rating,
		Name:    in.Name,
		Message: in.Message,
	}
}

func (s *Server) feedbackPage(c *gin.Context) {
	p, err := s.newPage(c, "Feedback", "feedback")
	if err != nil {
		s.pageError(c, err)
		return
	}
	if c.Query("sent") == "1" {
		p.Notice = "Thank you for your feedback!"
	}
	p.Body = newFeedbackBody(feedback.Input{})
	s.renderPage(c, http.StatusOK, "feedback", p)
}

// submitFeedback stores a guest submission. The HTML form is redirected
// back to the feedback page; JSON clients get the stored row.
func (s *Server) submitFeedback(c *gin.Context) {
	r := restaurantOf(c)

	var in feedback.Input
	if err := c.ShouldBind(&in); err != nil {
		if wantsJSON(c) {
			jsonError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		in = feedback.Input{Name: c.PostForm("name"), Message: c.PostForm("message")}
	}
	if in.Language == "" {
		in.Language = i18n.FromRequest(c, r.DefaultLanguage)
	}

	fb, err := s.feedback.Submit(c.Request.Context(), r, in)
	if err != nil {
		if wantsJSON(c) {
			s.fail(c, err)
			return
		}
		if !errors.Is(err, feedback.ErrInvalidRating) && !errors.Is(err, feedback.ErrEmptyMessage) {
			s.pageError(c, err)
			return
		}
		p, perr := s.newPage(c, "Feedback", "feedback")
		if perr != nil {
			s.pageError(c, perr)
			return
		}
		p.Error = err.Error()
		p.Body = newFeedbackBody(in)
		s.renderPage(c, http.StatusUnprocessableEntity, "feedback", p)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"feedback": fb})
		return
	}
	c.Redirect(http.StatusSeeOther, "/r/"+r.Slug+"/feedback?sent=1")
}

// serveMedia serves an image blob. Media ids are never reused, so the
// response may be cached for good.
func (s *Server) serveMedia(c *gin.Context) {
	m, err := s.media.Get(c.Request.Context(), restaurantOf(c).ID, c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("Content-Length", strconv.Itoa(len(m.Data)))
	c.Data(http.StatusOK, m.MimeType, m.Data)
}

// serveThumbnail serves the JPEG thumbnail, or the original when none
// could be made.
func (s *Server) serveThumbnail(c *gin.Context) {
	m, err := s.media.Get(c.Request.Context(), restaurantOf(c).ID, c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	if len(m.Thumbnail) == 0 {
		c.Data(http.StatusOK, m.MimeType, m.Data)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", m.Thumbnail)
}

func (s *Server) listFeedback(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	list, err := s.feedback.List(c.Request.Context(), restaurantOf(c).ID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": list})
}

func (s *Server) deleteFeedback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.feedback.Delete(c.Request.Context(), restaurantOf(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
