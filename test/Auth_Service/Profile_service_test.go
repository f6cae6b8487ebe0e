package Auth_Service

import (
	"testing"
	"time"

	"blogplatform/database"
	"blogplatform/service/Auth"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupAuthTestDB 创建认证服务测试数据库（使用 SQLite 内存数据库）
func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("无法创建测试数据库: %v", err)
	}

	err = db.AutoMigrate(&database.User{}, &database.Profile{}, &database.ProfileFollow{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// setupProfileService 创建资料服务实例
func setupProfileService(t *testing.T) (Auth.ProfileService, *gorm.DB, func()) {
	db := setupAuthTestDB(t)

	originalDB := database.DB
	database.DB = db

	service, err := Auth.NewProfileService(db)
	if err != nil {
		t.Fatalf("创建资料服务失败: %v", err)
	}

	cleanup := func() {
		database.DB = originalDB
	}
	return service, db, cleanup
}

func createAuthTestUser(t *testing.T, db *gorm.DB, username string) *database.User {
	user := &database.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         database.RoleReader,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

// TestGetOrCreateLazyProfile 缺失资料自愈：首次访问时创建，之后复用
func TestGetOrCreateLazyProfile(t *testing.T) {
	service, db, cleanup := setupProfileService(t)
	defer cleanup()

	user := createAuthTestUser(t, db, "lazyuser")

	profile, err := service.GetOrCreate(user.ID)
	if err != nil {
		t.Fatalf("惰性创建资料失败: %v", err)
	}
	if profile.UserID != user.ID || profile.IsSubscribed {
		t.Errorf("新建资料初始状态不正确: %+v", profile)
	}

	again, err := service.GetOrCreate(user.ID)
	if err != nil {
		t.Fatalf("再次获取资料失败: %v", err)
	}
	if again.ID != profile.ID {
		t.Error("再次获取应返回同一条资料")
	}

	var count int64
	db.Model(&database.Profile{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("每个用户应恰好有一条资料, got %d", count)
	}
}

// TestSubscribeThirtyDays 订阅自当天起30天内有效，第31天失效
func TestSubscribeThirtyDays(t *testing.T) {
	service, db, cleanup := setupProfileService(t)
	defer cleanup()

	user := createAuthTestUser(t, db, "subscriber")

	profile, err := service.Subscribe(user.ID, Auth.SubscriptionDays)
	if err != nil {
		t.Fatalf("开通订阅失败: %v", err)
	}
	if !profile.IsSubscribed || profile.SubscriptionEndDate == nil {
		t.Fatal("订阅后状态不正确")
	}

	now := time.Now()
	if !service.IsPremium(profile, now) {
		t.Error("订阅当天应为有效")
	}
	if !service.IsPremium(profile, now.AddDate(0, 0, 30)) {
		t.Error("第30天（截止日）应仍然有效")
	}
	if service.IsPremium(profile, now.AddDate(0, 0, 31)) {
		t.Error("第31天应失效")
	}
}

func TestIsPremiumEdgeCases(t *testing.T) {
	service, _, cleanup := setupProfileService(t)
	defer cleanup()

	now := time.Now()

	// 未订阅
	if service.IsPremium(&database.Profile{IsSubscribed: false}, now) {
		t.Error("未订阅不应为有效")
	}
	// 无资料
	if service.IsPremium(nil, now) {
		t.Error("无资料不应为有效")
	}
	// 已订阅且无截止日期
	if !service.IsPremium(&database.Profile{IsSubscribed: true}, now) {
		t.Error("无截止日期的订阅应长期有效")
	}
	// 截止日期是今天（按日期比较，当天仍有效）
	today := now
	if !service.IsPremium(&database.Profile{IsSubscribed: true, SubscriptionEndDate: &today}, now) {
		t.Error("截止日期为今天应仍然有效")
	}
}

func TestToggleFollow(t *testing.T) {
	service, db, cleanup := setupProfileService(t)
	defer cleanup()

	alice := createAuthTestUser(t, db, "alice")
	bob := createAuthTestUser(t, db, "bob")

	following, err := service.ToggleFollow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("关注失败: %v", err)
	}
	if !following {
		t.Error("首次关注应返回true")
	}

	// 关注是单向的
	count, _ := service.FollowerCount(bob.ID)
	if count != 1 {
		t.Errorf("bob应有1个粉丝, got %d", count)
	}
	count, _ = service.FollowerCount(alice.ID)
	if count != 0 {
		t.Errorf("alice不应有粉丝, got %d", count)
	}

	// 再次切换为取关
	following, err = service.ToggleFollow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("取关失败: %v", err)
	}
	if following {
		t.Error("再次切换应返回false")
	}

	// 不能关注自己
	if _, err := service.ToggleFollow(alice.ID, alice.ID); err == nil {
		t.Error("关注自己应报错")
	}
}

func TestProfileInitials(t *testing.T) {
	profile := &database.Profile{}
	if got := profile.Initials("jane doe"); got != "JD" {
		t.Errorf("缩写应为JD, got %q", got)
	}
	if got := profile.Initials("solo"); got != "S" {
		t.Errorf("单词名缩写应为S, got %q", got)
	}
}
