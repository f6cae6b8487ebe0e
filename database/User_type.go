package database

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 用户角色
const (
	RoleReader = "reader"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

// User 用户数据存储结构，身份信息创建后不可修改
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null;size:50"`
	Email        string `gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string `gorm:"not null;size:255"`
	Role         string `gorm:"not null;size:10;default:'reader'"`
	LastLogin    time.Time
}

// Profile 用户资料，与 User 一对一，首次认证请求时惰性创建
type Profile struct {
	gorm.Model
	UserID              uint   `gorm:"uniqueIndex;not null"`
	Bio                 string `gorm:"type:text"`
	Avatar              string `gorm:"size:255"` // 头像引用，由外部存储解析
	IsSubscribed        bool   `gorm:"default:false"`
	SubscriptionEndDate *time.Time
}

// Initials 根据用户名生成头像缩写
func (p *Profile) Initials(username string) string {
	parts := strings.Fields(username)
	initials := ""
	for i, part := range parts {
		if i >= 2 {
			break
		}
		initials += strings.ToUpper(string([]rune(part)[0]))
	}
	return initials
}

// ProfileFollow 关注关系边表，follower 关注 followed（单向）
type ProfileFollow struct {
	gorm.Model
	FollowerID uint `gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	FollowedID uint `gorm:"not null;index;uniqueIndex:idx_follower_followed"`
}

// RegisterRequest 注册请求结构体，角色在注册时选定
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=reader author"`
}

// LoginRequest 登录请求结构体，以邮箱作为登录凭证
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse 用户响应结构体
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse 登录响应结构体
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// ProfileResponse 个人中心响应
type ProfileResponse struct {
	User          UserResponse   `json:"user"`
	Bio           string         `json:"bio"`
	Avatar        string         `json:"avatar"`
	Initials      string         `json:"initials"`
	IsSubscribed  bool           `json:"is_subscribed"`
	SubscribedTo  string         `json:"subscription_end_date,omitempty"`
	PostCount     int64          `json:"post_count"`
	BookmarkCount int64          `json:"bookmark_count"`
	FollowerCount int64          `json:"follower_count"`
	RecentPosts   []PostResponse `json:"recent_posts"`
}

// SubscribeResponse 订阅响应
type SubscribeResponse struct {
	Message             string `json:"message"`
	SubscriptionEndDate string `json:"subscription_end_date"`
}

// FollowResponse 关注切换响应
type FollowResponse struct {
	Following bool `json:"following"`
}
