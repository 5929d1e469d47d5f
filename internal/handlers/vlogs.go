package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vlogapp/api/internal/middleware"
	"vlogapp/api/internal/models"
	"vlogapp/api/internal/service"
	"vlogapp/api/internal/store"
)

type vlogResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	AuthorName   string    `json:"authorName"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CategoryID   *string   `json:"categoryId,omitempty"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toVlogResponse(vlog models.Vlog) vlogResponse {
	return vlogResponse{
		ID:           vlog.ID,
		UserID:       vlog.UserID,
		AuthorName:   vlog.AuthorName,
		Title:        vlog.Title,
		Description:  vlog.Description,
		VideoURL:     vlog.VideoURL,
		ThumbnailURL: vlog.ThumbnailURL,
		CategoryID:   vlog.CategoryID,
		LikeCount:    vlog.LikeCount,
		CommentCount: vlog.CommentCount,
		CreatedAt:    vlog.CreatedAt,
	}
}

type commentResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toCommentResponse(comment models.VlogComment) commentResponse {
	return commentResponse{
		ID:         comment.ID,
		UserID:     comment.UserID,
		AuthorName: comment.AuthorName,
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	}
}

func (h HandlerSet) UploadVlog(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	video, videoHeader, err := c.Request.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}
	defer video.Close()

	input := service.UploadVlogInput{
		UserID:      claims.UserID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		CategoryID:  c.PostForm("categoryId"),
		Video:       video,
		VideoHeader: videoHeader,
	}

	if thumb, thumbHeader, err := c.Request.FormFile("thumbnail"); err == nil {
		defer thumb.Close()
		input.Thumbnail = thumb
		input.ThumbHeader = thumbHeader
	}

	vlog, err := h.vlogs.Upload(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toVlogResponse(vlog))
}

func (h HandlerSet) ListVlogs(c *gin.Context) {
	vlogs, err := h.vlogs.List(c.Request.Context(), store.VlogFilter{
		CategoryID: c.Query("category"),
		Query:      c.Query("q"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]vlogResponse, 0, len(vlogs))
	for _, vlog := range vlogs {
		resp = append(resp, toVlogResponse(vlog))
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) GetVlog(c *gin.Context) {
	vlog, comments, err := h.vlogs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	commentResp := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		commentResp = append(commentResp, toCommentResponse(comment))
	}

	c.JSON(http.StatusOK, gin.H{
		"vlog":     toVlogResponse(vlog),
		"comments": commentResp,
	})
}

type updateVlogRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *string `json:"categoryId"`
}

func (h HandlerSet) UpdateVlog(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	var req updateVlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.vlogs.Update(c.Request.Context(), claims.UserID, c.Param("id"), service.UpdateVlogInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vlog updated"})
}

func (h HandlerSet) DeleteVlog(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if err := h.vlogs.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vlog deleted"})
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func (h HandlerSet) AddComment(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	comment, err := h.vlogs.AddComment(c.Request.Context(), claims.UserID, c.Param("id"), req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (h HandlerSet) LikeVlog(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if err := h.vlogs.Like(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Liked"})
}

func (h HandlerSet) UnlikeVlog(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if err := h.vlogs.Unlike(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unliked"})
}

func (h HandlerSet) FollowUser(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if err := h.vlogs.Follow(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Following"})
}

func (h HandlerSet) UnfollowUser(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if err := h.vlogs.Unfollow(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

func (h HandlerSet) FollowStats(c *gin.Context) {
	stats, err := h.vlogs.FollowStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h HandlerSet) ListCategories(c *gin.Context) {
	categories, err := h.vlogs.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, gin.H{"id": category.ID, "name": category.Name})
	}
	c.JSON(http.StatusOK, resp)
}
