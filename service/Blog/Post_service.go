package Blog

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"blogplatform/database"

	"gorm.io/gorm"
)

// 分页大小
const (
	PostPageSize     = 9
	BookmarkPageSize = 12
)

// GlobalPostService 全局 PostService 实例
var GlobalPostService PostServiceInterface

// PostServiceInterface 文章服务接口
type PostServiceInterface interface {
	// ListPosts 返回已发布文章的一页，过滤条件（搜索/分类/标签）取交集，
	// 返回值依次为：文章、总数、归一化后的页码
	ListPosts(search, categorySlug, tagName string, page int) ([]database.Post, int64, int, error)
	GetPostBySlug(slug string) (*database.Post, error)
	IncrementViewCount(postID uint) error
	FeaturedPost() (*database.Post, error)
	CategoryFacets() ([]database.CategoryFacet, error)
	GetCategoryBySlug(slug string) (*database.Category, error)
	DeleteCategory(categoryID uint) error
	AttachCounts(posts []database.Post) error
	RelatedPosts(post *database.Post, limit int) ([]database.Post, error)
	CreatePost(authorID uint, req database.PostRequest) (*database.Post, error)
	UpdatePost(post *database.Post, req database.PostRequest) error
	DeletePost(postID uint) error

	// CanViewFull 付费墙判定：免费文章、订阅读者或作者本人可见全文。
	// 纯函数，不修改任何状态
	CanViewFull(post *database.Post, viewerID uint, viewerIsPremium bool) bool
}

type postService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) (PostServiceInterface, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}

	service := &postService{db}
	GlobalPostService = service
	return service, nil
}

// ListPosts 获取已发布文章列表
func (s *postService) ListPosts(search, categorySlug, tagName string, page int) ([]database.Post, int64, int, error) {
	q := s.db.Model(&database.Post{}).Where("posts.status = ?", database.StatusPublished)

	if search != "" {
		// 标题/正文/标签名大小写不敏感 OR 匹配；
		// 标签连接会产生重复行，先取ID集合去重再过滤
		pattern := "%" + strings.ToLower(search) + "%"
		var ids []uint
		err := s.db.Model(&database.Post{}).
			Joins("LEFT JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("LEFT JOIN tags ON tags.id = post_tags.tag_id").
			Where("posts.status = ?", database.StatusPublished).
			Where("LOWER(posts.title) LIKE ? OR LOWER(posts.body) LIKE ? OR LOWER(tags.name) LIKE ?",
				pattern, pattern, pattern).
			Distinct().
			Pluck("posts.id", &ids).Error
		if err != nil {
			return nil, 0, 1, err
		}
		q = q.Where("posts.id IN ?", ids)
	}

	if categorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	if tagName != "" {
		var ids []uint
		err := s.db.Model(&database.Post{}).
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", tagName).
			Distinct().
			Pluck("posts.id", &ids).Error
		if err != nil {
			return nil, 0, 1, err
		}
		q = q.Where("posts.id IN ?", ids)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, 1, err
	}

	page, offset := clampPage(page, total, PostPageSize)

	var posts []database.Post
	err := q.Preload("Author").Preload("Category").Preload("Tags").
		Order("posts.publish_date DESC, posts.id ASC").
		Offset(offset).Limit(PostPageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, page, err
	}
	return posts, total, page, nil
}

// GetPostBySlug 根据slug获取文章；slug按发布日期分区唯一，
// 同名slug取最近发布的一篇
func (s *postService) GetPostBySlug(slug string) (*database.Post, error) {
	var post database.Post
	err := s.db.Preload("Author").Preload("Category").Preload("Tags").
		Where("slug = ?", slug).
		Order("publish_date DESC").
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// IncrementViewCount 浏览量+1，不要求严格串行，交给存储层原子自增
func (s *postService) IncrementViewCount(postID uint) error {
	return s.db.Model(&database.Post{}).Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// FeaturedPost 精选文章：浏览量最高的已发布文章，不受列表过滤条件影响
func (s *postService) FeaturedPost() (*database.Post, error) {
	var post database.Post
	err := s.db.Preload("Author").Preload("Category").Preload("Tags").
		Where("status = ?", database.StatusPublished).
		Order("view_count DESC").
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// CategoryFacets 分类聚合，只返回至少有一篇已发布文章的分类
func (s *postService) CategoryFacets() ([]database.CategoryFacet, error) {
	var facets []database.CategoryFacet
	err := s.db.Model(&database.Category{}).
		Select("categories.id, categories.name, categories.slug, categories.icon, COUNT(posts.id) AS post_count").
		Joins("JOIN posts ON posts.category_id = categories.id AND posts.status = ?", database.StatusPublished).
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&facets).Error
	return facets, err
}

// GetCategoryBySlug 根据slug获取分类
func (s *postService) GetCategoryBySlug(slug string) (*database.Category, error) {
	var category database.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory 删除分类，所属文章的分类引用置空，文章保留
func (s *postService) DeleteCategory(categoryID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Post{}).Where("category_id = ?", categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Category{}, categoryID).Error
	})
}

// AttachCounts 批量填充点赞数和评论数（避免逐篇查询）
func (s *postService) AttachCounts(posts []database.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	type countRow struct {
		PostID uint
		Count  int64
	}

	var likeRows []countRow
	if err := s.db.Model(&database.Like{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&likeRows).Error; err != nil {
		return err
	}
	var commentRows []countRow
	if err := s.db.Model(&database.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&commentRows).Error; err != nil {
		return err
	}

	likeMap := make(map[uint]int64, len(likeRows))
	for _, row := range likeRows {
		likeMap[row.PostID] = row.Count
	}
	commentMap := make(map[uint]int64, len(commentRows))
	for _, row := range commentRows {
		commentMap[row.PostID] = row.Count
	}

	for i := range posts {
		posts[i].LikeCount = likeMap[posts[i].ID]
		posts[i].CommentCount = commentMap[posts[i].ID]
	}
	return nil
}

// RelatedPosts 相关文章：同分类的其他已发布文章，无分类时取最新文章
func (s *postService) RelatedPosts(post *database.Post, limit int) ([]database.Post, error) {
	q := s.db.Preload("Author").Preload("Category").
		Where("status = ?", database.StatusPublished).
		Where("id != ?", post.ID)
	if post.CategoryID != nil {
		q = q.Where("category_id = ?", *post.CategoryID)
	}

	var posts []database.Post
	err := q.Order("publish_date DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// CreatePost 创建文章
func (s *postService) CreatePost(authorID uint, req database.PostRequest) (*database.Post, error) {
	now := time.Now()
	post := &database.Post{
		Title:         req.Title,
		Slug:          Slugify(req.Title),
		PublishDay:    now.Format("2006-01-02"),
		Excerpt:       req.Excerpt,
		Body:          req.Body,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      authorID,
		CategoryID:    req.CategoryID,
		PublishDate:   now,
		Status:        req.Status,
		AccessLevel:   req.AccessLevel,
	}
	if post.Status == "" {
		post.Status = database.StatusPublished
	}
	if post.AccessLevel == "" {
		post.AccessLevel = database.AccessFree
	}
	// 摘要留空时持久化派生摘要
	if post.Excerpt == "" {
		post.Excerpt = post.GetExcerpt()
	}

	tags, err := s.resolveTags(req.Tags)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	if err := s.db.Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.New("同一发布日期下已存在相同标识的文章")
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost 更新文章（调用方负责作者权限校验）
func (s *postService) UpdatePost(post *database.Post, req database.PostRequest) error {
	excerpt := req.Excerpt
	if excerpt == "" {
		derived := &database.Post{Body: req.Body}
		excerpt = derived.GetExcerpt()
	}

	updates := map[string]interface{}{
		"title":          req.Title,
		"body":           req.Body,
		"excerpt":        excerpt,
		"featured_image": req.FeaturedImage,
		"category_id":    req.CategoryID,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.AccessLevel != "" {
		updates["access_level"] = req.AccessLevel
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Updates(updates).Error; err != nil {
			return err
		}
		if req.Tags != nil {
			tags, err := s.resolveTags(req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePost 删除文章，级联清理评论、点赞、收藏和标签关联
func (s *postService) DeletePost(postID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&database.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&database.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&database.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&database.Post{Model: gorm.Model{ID: postID}}).
			Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&database.Post{}, postID).Error
	})
}

// CanViewFull 付费墙判定
func (s *postService) CanViewFull(post *database.Post, viewerID uint, viewerIsPremium bool) bool {
	if post.AccessLevel == database.AccessFree {
		return true
	}
	if viewerIsPremium {
		return true
	}
	return viewerID != 0 && viewerID == post.AuthorID
}

// resolveTags 按名称查找或创建标签
func (s *postService) resolveTags(names []string) ([]database.Tag, error) {
	tags := make([]database.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tag database.Tag
		if err := s.db.Where("name = ?", name).FirstOrCreate(&tag, database.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Preview 付费墙预览：正文前300个字符加省略号
func Preview(body string) string {
	runes := []rune(body)
	if len(runes) > 300 {
		runes = runes[:300]
	}
	return string(runes) + "..."
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 由标题生成slug
func Slugify(title string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// clampPage 页码归一化：小于1取1，越界收敛到最后一页，
// 列表页和收藏页共用同一策略
func clampPage(page int, total int64, pageSize int) (int, int) {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, (page - 1) * pageSize
}

// TotalPages 由总数计算总页数，至少为1
func TotalPages(total int64, pageSize int) int {
	pages := int(math.Ceil(float64(total) / float64(pageSize)))
	if pages < 1 {
		return 1
	}
	return pages
}
