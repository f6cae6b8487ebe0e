package Blog

import (
	"net/http"
	"strconv"

	"blogplatform/Route/Auth"
	"blogplatform/database"
	"blogplatform/service/Blog"

	"github.com/gin-gonic/gin"
)

// ListPosts 文章列表，支持搜索/分类/标签过滤和分页
func ListPosts(c *gin.Context) {
	search := c.Query("q")
	categorySlug := c.Query("category")
	tagName := c.Query("tag")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	renderPostList(c, search, categorySlug, tagName, page, true)
}

// ListCategoryPosts 分类文章列表
func ListCategoryPosts(c *gin.Context) {
	slug := c.Param("slug")

	if _, err := Blog.GlobalPostService.GetCategoryBySlug(slug); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "分类不存在"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	// 分类页不展示精选文章
	renderPostList(c, "", slug, "", page, false)
}

// renderPostList 组装文章列表响应
func renderPostList(c *gin.Context, search, categorySlug, tagName string, page int, withFeatured bool) {
	postService := Blog.GlobalPostService

	posts, total, page, err := postService.ListPosts(search, categorySlug, tagName, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文章列表失败: " + err.Error()})
		return
	}

	if err := postService.AttachCounts(posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文章列表失败: " + err.Error()})
		return
	}

	facets, err := postService.CategoryFacets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取分类失败: " + err.Error()})
		return
	}

	resp := database.PostListResponse{
		Posts:          make([]database.PostResponse, 0, len(posts)),
		Total:          total,
		Page:           page,
		PageSize:       Blog.PostPageSize,
		TotalPages:     Blog.TotalPages(total, Blog.PostPageSize),
		Categories:     facets,
		BookmarkedIDs:  []uint{},
		SearchQuery:    search,
		ActiveCategory: categorySlug,
		ActiveTag:      tagName,
	}
	for i := range posts {
		resp.Posts = append(resp.Posts, toPostResponse(&posts[i]))
	}

	// 精选文章：浏览量最高的已发布文章，与过滤条件无关
	if withFeatured {
		featured, err := postService.FeaturedPost()
		if err == nil && featured != nil {
			tmp := []database.Post{*featured}
			_ = postService.AttachCounts(tmp)
			fr := toPostResponse(&tmp[0])
			resp.FeaturedPost = &fr
		}
	}

	// 已登录用户附带收藏标记
	if userID := Auth.CurrentUserID(c); userID != 0 {
		if ids, err := Blog.GlobalEngagementService.BookmarkedPostIDs(userID); err == nil {
			resp.BookmarkedIDs = ids
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetPostDetail 文章详情，浏览量+1，付费内容按付费墙规则裁剪
func GetPostDetail(c *gin.Context) {
	slug := c.Param("slug")
	postService := Blog.GlobalPostService

	post, err := postService.GetPostBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}

	// 浏览量自增（最终一致即可）
	_ = postService.IncrementViewCount(post.ID)

	userID := Auth.CurrentUserID(c)
	isPremium := Auth.IsPremium(c)

	resp := database.PostDetailResponse{
		Post:      toPostResponse(post),
		IsPremium: isPremium,
		Comments:  []database.CommentResponse{},
	}

	if postService.CanViewFull(post, userID, isPremium) {
		resp.Body = post.Body
	} else {
		resp.Paywall = true
		resp.Body = Blog.Preview(post.Body)
	}

	resp.LikeCount, _ = Blog.GlobalEngagementService.LikeCount(post.ID)
	if userID != 0 {
		resp.IsLiked, _ = Blog.GlobalEngagementService.IsLiked(post.ID, userID)
		resp.IsBookmarked, _ = Blog.GlobalEngagementService.IsBookmarked(post.ID, userID)
	}

	comments, err := Blog.GlobalCommentService.ListForPost(post.ID)
	if err == nil {
		for i := range comments {
			resp.Comments = append(resp.Comments, toCommentResponse(&comments[i]))
		}
	}

	related, err := postService.RelatedPosts(post, 3)
	if err == nil {
		resp.RelatedPosts = make([]database.PostResponse, 0, len(related))
		for i := range related {
			resp.RelatedPosts = append(resp.RelatedPosts, toPostResponse(&related[i]))
		}
	}

	c.JSON(http.StatusOK, resp)
}

// CreatePost 发布文章（需要作者角色）
func CreatePost(c *gin.Context) {
	var req database.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	post, err := Blog.GlobalPostService.CreatePost(Auth.CurrentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "发布文章失败: " + err.Error()})
		return
	}

	// 回读作者信息
	post, err = Blog.GlobalPostService.GetPostBySlug(post.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发布文章失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "文章发布成功",
		"post":    toPostResponse(post),
	})
}

// UpdatePost 更新文章，只有作者本人可以修改
func UpdatePost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := Blog.GlobalPostService.GetPostBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}

	if post.AuthorID != Auth.CurrentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "只能修改自己的文章"})
		return
	}

	var req database.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	if err := Blog.GlobalPostService.UpdatePost(post, req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新文章失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章更新成功"})
}

// DeletePost 删除文章，只有作者本人可以删除
func DeletePost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := Blog.GlobalPostService.GetPostBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}

	if post.AuthorID != Auth.CurrentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "只能删除自己的文章"})
		return
	}

	if err := Blog.GlobalPostService.DeletePost(post.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除文章失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章删除成功"})
}

// toPostResponse 组装文章列表项
func toPostResponse(post *database.Post) database.PostResponse {
	resp := database.PostResponse{
		ID:            post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		Excerpt:       post.GetExcerpt(),
		FeaturedImage: post.FeaturedImage,
		Author:        post.Author.Username,
		Tags:          make([]string, 0, len(post.Tags)),
		PublishDate:   post.PublishDate,
		AccessLevel:   post.AccessLevel,
		ViewCount:     post.ViewCount,
		ReadingTime:   post.ReadingTime(),
		LikeCount:     post.LikeCount,
		CommentCount:  post.CommentCount,
	}
	if post.Category != nil {
		resp.Category = post.Category.Name
		resp.CategorySlug = post.Category.Slug
	}
	for _, tag := range post.Tags {
		resp.Tags = append(resp.Tags, tag.Name)
	}
	return resp
}

// toCommentResponse 组装评论（含回复）
func toCommentResponse(comment *database.Comment) database.CommentResponse {
	resp := database.CommentResponse{
		ID:          comment.ID,
		Author:      comment.Author.Username,
		Body:        comment.Body,
		CreatedDate: comment.CreatedAt,
	}
	for i := range comment.Replies {
		resp.Replies = append(resp.Replies, toCommentResponse(&comment.Replies[i]))
	}
	return resp
}
