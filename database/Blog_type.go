package database

import (
	"math"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// 文章状态
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// 文章访问级别
const (
	AccessFree    = "free"
	AccessPremium = "premium"
)

// Category 文章分类，删除分类时文章的分类引用置空而不删除文章
type Category struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;not null;size:100"`
	Slug        string `gorm:"uniqueIndex;not null;size:100"`
	Description string `gorm:"type:text"`
	Icon        string `gorm:"size:50"` // CSS图标类名或emoji
	Posts       []Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

// Tag 文章标签
type Tag struct {
	gorm.Model
	Name  string `gorm:"uniqueIndex;not null;size:100"`
	Posts []Post `gorm:"many2many:post_tags;"`
}

// Post 文章
// slug 的唯一性按发布日期（PublishDay）分区而不是全局唯一，
// PublishDay 在创建时物化为 YYYY-MM-DD，SQLite 无法通过 gorm 标签对
// DATE(publish_date) 建表达式索引
type Post struct {
	gorm.Model
	Title         string `gorm:"not null;size:255"`
	Slug          string `gorm:"not null;size:255;uniqueIndex:idx_slug_publish_day"`
	PublishDay    string `gorm:"not null;size:10;uniqueIndex:idx_slug_publish_day"`
	Excerpt       string `gorm:"type:text"` // 留空时自动从正文生成
	Body          string `gorm:"type:text;not null"`
	FeaturedImage string `gorm:"size:255"` // 图片引用，由外部存储解析
	AuthorID      uint   `gorm:"not null;index"`
	Author        User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CategoryID    *uint  `gorm:"index"`
	Category      *Category
	Tags          []Tag     `gorm:"many2many:post_tags;"`
	PublishDate   time.Time `gorm:"index"`
	Status        string    `gorm:"not null;size:10;default:'published';index"`
	AccessLevel   string    `gorm:"not null;size:10;default:'free'"`
	ViewCount     uint      `gorm:"default:0"`

	// 非数据库字段，查询时批量填充
	LikeCount    int64 `gorm:"-" json:"like_count"`
	CommentCount int64 `gorm:"-" json:"comment_count"`
}

var markupRe = regexp.MustCompile(`<[^>]+>`)

// GetExcerpt 返回摘要：手工摘要原样返回，否则剥离标记后
// 截取正文前160个字符并回退到单词边界，超长时追加省略号
func (p *Post) GetExcerpt() string {
	if p.Excerpt != "" {
		return p.Excerpt
	}
	clean := markupRe.ReplaceAllString(p.Body, "")
	runes := []rune(clean)
	if len(runes) <= 160 {
		return clean
	}
	cut := string(runes[:160])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// ReadingTime 预估阅读时长（分钟），按每分钟200词
func (p *Post) ReadingTime() int {
	words := len(strings.Fields(p.Body))
	minutes := int(math.Ceil(float64(words) / 200.0))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Comment 评论，parent 为空表示顶层评论，否则为对父评论的回复
type Comment struct {
	gorm.Model
	PostID   uint      `gorm:"not null;index"`
	Post     Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Body     string    `gorm:"type:text;not null"`
	ParentID *uint     `gorm:"index"`
	Replies  []Comment `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Like 点赞，(post, user) 唯一，同一用户对同一文章最多点赞一次
type Like struct {
	gorm.Model
	PostID uint `gorm:"not null;index;uniqueIndex:idx_like_post_user"`
	Post   Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID uint `gorm:"not null;index;uniqueIndex:idx_like_post_user"`
}

// Bookmark 收藏，(post, user) 唯一，列表按收藏时间倒序
type Bookmark struct {
	gorm.Model
	PostID uint `gorm:"not null;index;uniqueIndex:idx_bookmark_post_user"`
	Post   Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID uint `gorm:"not null;index;uniqueIndex:idx_bookmark_post_user"`
}

// ========== 请求结构体 ==========

// PostRequest 创建/更新文章请求
type PostRequest struct {
	Title         string   `json:"title" binding:"required,max=255"`
	Body          string   `json:"body" binding:"required"`
	Excerpt       string   `json:"excerpt"`
	CategoryID    *uint    `json:"category_id"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featured_image"`
	Status        string   `json:"status" binding:"omitempty,oneof=draft published"`
	AccessLevel   string   `json:"access_level" binding:"omitempty,oneof=free premium"`
}

// CommentRequest 评论请求
type CommentRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// ========== 响应结构体 ==========

// CategoryFacet 分类聚合项（只包含有已发布文章的分类）
type CategoryFacet struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Icon      string `json:"icon"`
	PostCount int64  `json:"post_count"`
}

// PostResponse 列表项响应
type PostResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	Author        string    `json:"author"`
	Category      string    `json:"category,omitempty"`
	CategorySlug  string    `json:"category_slug,omitempty"`
	Tags          []string  `json:"tags"`
	PublishDate   time.Time `json:"publish_date"`
	AccessLevel   string    `json:"access_level"`
	ViewCount     uint      `json:"view_count"`
	ReadingTime   int       `json:"reading_time"`
	LikeCount     int64     `json:"like_count"`
	CommentCount  int64     `json:"comment_count"`
}

// PostListResponse 文章列表响应
type PostListResponse struct {
	Posts          []PostResponse  `json:"posts"`
	Total          int64           `json:"total"`
	Page           int             `json:"page"`
	PageSize       int             `json:"page_size"`
	TotalPages     int             `json:"total_pages"`
	Categories     []CategoryFacet `json:"categories"`
	FeaturedPost   *PostResponse   `json:"featured_post,omitempty"`
	BookmarkedIDs  []uint          `json:"bookmarked_ids"`
	SearchQuery    string          `json:"search_query"`
	ActiveCategory string          `json:"active_category"`
	ActiveTag      string          `json:"active_tag"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	ID          uint              `json:"id"`
	Author      string            `json:"author"`
	Body        string            `json:"body"`
	CreatedDate time.Time         `json:"created_date"`
	Replies     []CommentResponse `json:"replies,omitempty"`
}

// PostDetailResponse 文章详情响应，付费墙生效时 body 为预览
type PostDetailResponse struct {
	Post         PostResponse      `json:"post"`
	Body         string            `json:"body"`
	Paywall      bool              `json:"paywall"`
	IsPremium    bool              `json:"is_premium"`
	IsLiked      bool              `json:"is_liked"`
	IsBookmarked bool              `json:"is_bookmarked"`
	LikeCount    int64             `json:"like_count"`
	Comments     []CommentResponse `json:"comments"`
	RelatedPosts []PostResponse    `json:"related_posts"`
}

// ToggleLikeResponse 点赞切换响应
type ToggleLikeResponse struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// ToggleBookmarkResponse 收藏切换响应
type ToggleBookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

// BookmarkListResponse 收藏列表响应
type BookmarkListResponse struct {
	Bookmarks  []PostResponse `json:"bookmarks"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// CommentEvent 评论实时推送事件载荷
type CommentEvent struct {
	Author      string `json:"author"`
	Body        string `json:"body"`
	CreatedDate string `json:"created_date"`
}
