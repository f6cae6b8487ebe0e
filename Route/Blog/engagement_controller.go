package Blog

import (
	"net/http"
	"strconv"

	"blogplatform/Route/Auth"
	"blogplatform/database"
	"blogplatform/service/Blog"

	"github.com/gin-gonic/gin"
)

// ToggleLike 点赞/取消点赞
func ToggleLike(c *gin.Context) {
	slug := c.Param("slug")

	post, err := Blog.GlobalPostService.GetPostBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}

	liked, count, err := Blog.GlobalEngagementService.ToggleLike(post.ID, Auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "点赞操作失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, database.ToggleLikeResponse{Liked: liked, Count: count})
}

// ToggleBookmark 收藏/取消收藏
func ToggleBookmark(c *gin.Context) {
	slug := c.Param("slug")

	post, err := Blog.GlobalPostService.GetPostBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}

	bookmarked, err := Blog.GlobalEngagementService.ToggleBookmark(post.ID, Auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "收藏操作失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, database.ToggleBookmarkResponse{Bookmarked: bookmarked})
}

// ListBookmarks 我的收藏，按收藏时间倒序分页
func ListBookmarks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	userID := Auth.CurrentUserID(c)

	bookmarks, total, page, err := Blog.GlobalEngagementService.ListBookmarks(userID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取收藏列表失败: " + err.Error()})
		return
	}

	posts := make([]database.Post, 0, len(bookmarks))
	for _, b := range bookmarks {
		posts = append(posts, b.Post)
	}
	if err := Blog.GlobalPostService.AttachCounts(posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取收藏列表失败: " + err.Error()})
		return
	}

	resp := database.BookmarkListResponse{
		Bookmarks:  make([]database.PostResponse, 0, len(posts)),
		Total:      total,
		Page:       page,
		PageSize:   Blog.BookmarkPageSize,
		TotalPages: Blog.TotalPages(total, Blog.BookmarkPageSize),
	}
	for i := range posts {
		resp.Bookmarks = append(resp.Bookmarks, toPostResponse(&posts[i]))
	}

	c.JSON(http.StatusOK, resp)
}
