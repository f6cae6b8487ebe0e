package Auth

import (
	"net/http"

	"blogplatform/database"
	"blogplatform/service/Auth"

	"github.com/gin-gonic/gin"
)

func getUserService() Auth.UserService {
	return Auth.GlobalUserService
}

// Register 用户注册
func Register(c *gin.Context) {
	var req database.RegisterRequest

	// 绑定请求数据
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	userService := getUserService()
	user, err := userService.CreateUser(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "创建用户失败: " + err.Error(),
		})
		return
	}

	// 生成JWT令牌
	token, err := Auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "生成令牌失败",
		})
		return
	}

	c.SetCookie("access_token", token, 3600*24*7, "/", "", false, true)

	c.JSON(http.StatusOK, database.LoginResponse{
		Message: "注册成功",
		Token:   token,
		User:    toUserResponse(user),
	})
}

// Login 用户登录（邮箱+密码）
func Login(c *gin.Context) {
	var req database.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	userService := getUserService()
	user, err := userService.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "邮箱或密码错误",
		})
		return
	}

	if !Auth.VerifyPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "邮箱或密码错误",
		})
		return
	}

	// 更新最后登录时间
	_ = userService.TouchLastLogin(user.ID)

	token, err := Auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "生成令牌失败",
		})
		return
	}

	c.SetCookie("access_token", token, 3600*24*7, "/", "", false, true)

	c.JSON(http.StatusOK, database.LoginResponse{
		Message: "登录成功",
		Token:   token,
		User:    toUserResponse(user),
	})
}

// Logout 用户注销
func Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "已退出登录",
	})
}

// GetProfile 获取个人中心信息
func GetProfile(c *gin.Context) {
	userID := CurrentUserID(c)

	user, err := getUserService().GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "用户不存在",
		})
		return
	}

	profile, err := Auth.GlobalProfileService.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取用户资料失败"})
		return
	}

	var postCount, bookmarkCount int64
	database.DB.Model(&database.Post{}).Where("author_id = ?", userID).Count(&postCount)
	database.DB.Model(&database.Bookmark{}).Where("user_id = ?", userID).Count(&bookmarkCount)
	followerCount, _ := Auth.GlobalProfileService.FollowerCount(userID)

	// 最近发布的5篇文章
	var recent []database.Post
	database.DB.Preload("Category").Preload("Author").
		Where("author_id = ? AND status = ?", userID, database.StatusPublished).
		Order("publish_date DESC").Limit(5).Find(&recent)

	recentResponses := make([]database.PostResponse, 0, len(recent))
	for i := range recent {
		recentResponses = append(recentResponses, database.PostResponse{
			ID:          recent[i].ID,
			Title:       recent[i].Title,
			Slug:        recent[i].Slug,
			Excerpt:     recent[i].GetExcerpt(),
			Author:      user.Username,
			PublishDate: recent[i].PublishDate,
			AccessLevel: recent[i].AccessLevel,
			ViewCount:   recent[i].ViewCount,
			ReadingTime: recent[i].ReadingTime(),
		})
	}

	resp := database.ProfileResponse{
		User:          toUserResponse(user),
		Bio:           profile.Bio,
		Avatar:        profile.Avatar,
		Initials:      profile.Initials(user.Username),
		IsSubscribed:  profile.IsSubscribed,
		PostCount:     postCount,
		BookmarkCount: bookmarkCount,
		FollowerCount: followerCount,
		RecentPosts:   recentResponses,
	}
	if profile.SubscriptionEndDate != nil {
		resp.SubscribedTo = profile.SubscriptionEndDate.Format("2006-01-02")
	}

	c.JSON(http.StatusOK, resp)
}

// ToggleFollow 关注/取关指定用户
func ToggleFollow(c *gin.Context) {
	userID := CurrentUserID(c)
	username := c.Param("username")

	target, err := getUserService().GetUserByUsername(username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}

	following, err := Auth.GlobalProfileService.ToggleFollow(userID, target.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "关注操作失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, database.FollowResponse{Following: following})
}

// ProcessSubscription 开通订阅，自当天起30天内有效
func ProcessSubscription(c *gin.Context) {
	userID := CurrentUserID(c)

	profile, err := Auth.GlobalProfileService.Subscribe(userID, Auth.SubscriptionDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "开通订阅失败: " + err.Error()})
		return
	}

	end := profile.SubscriptionEndDate.Format("Jan 02, 2006")
	c.JSON(http.StatusOK, database.SubscribeResponse{
		Message:             "订阅成功，有效期至 " + end,
		SubscriptionEndDate: profile.SubscriptionEndDate.Format("2006-01-02"),
	})
}

func toUserResponse(user *database.User) database.UserResponse {
	return database.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
