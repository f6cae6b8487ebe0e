package Blog

import (
	"net/http"

	"blogplatform/Route/Auth"
	"blogplatform/database"
	"blogplatform/service/Blog"

	"github.com/gin-gonic/gin"
)

// AddComment 发表评论。评论先落库，再向该文章的实时主题推送
// 一条事件——推送失败不影响评论结果
func AddComment(c *gin.Context) {
	slug := c.Param("slug")

	post, err := Blog.GlobalPostService.GetPostBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}

	var req database.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	comment, err := Blog.GlobalCommentService.CreateComment(
		post.ID, Auth.CurrentUserID(c), req.Body, req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "发表评论失败: " + err.Error()})
		return
	}

	// 实时推送给当前正在看这篇文章的连接，fire-and-forget
	Blog.GlobalFanoutService.PublishComment(post.Slug, database.CommentEvent{
		Author:      comment.Author.Username,
		Body:        comment.Body,
		CreatedDate: comment.CreatedAt.Format("Jan 02, 2006, 03:04 PM"),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "评论发表成功",
		"comment": database.CommentResponse{
			ID:          comment.ID,
			Author:      comment.Author.Username,
			Body:        comment.Body,
			CreatedDate: comment.CreatedAt,
		},
	})
}
