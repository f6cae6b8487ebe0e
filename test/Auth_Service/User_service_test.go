package Auth_Service

import (
	"testing"

	"blogplatform/Config"
	"blogplatform/database"
	"blogplatform/service/Auth"
)

// setupUserService 创建用户服务实例
func setupUserService(t *testing.T) (Auth.UserService, func()) {
	db := setupAuthTestDB(t)

	originalDB := database.DB
	database.DB = db

	service, err := Auth.NewUserService(db)
	if err != nil {
		t.Fatalf("创建用户服务失败: %v", err)
	}

	cleanup := func() {
		database.DB = originalDB
	}
	return service, cleanup
}

func TestCreateUser(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	user, err := service.CreateUser(database.RegisterRequest{
		Username: "newreader",
		Email:    "reader@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 角色默认为reader
	if user.Role != database.RoleReader {
		t.Errorf("默认角色应为reader, got %q", user.Role)
	}
	// 密码只存哈希
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Error("密码应以哈希形式存储")
	}
	if !Auth.VerifyPassword("secret123", user.PasswordHash) {
		t.Error("密码哈希校验失败")
	}
	if Auth.VerifyPassword("wrong", user.PasswordHash) {
		t.Error("错误密码不应通过校验")
	}
}

func TestCreateUserWithAuthorRole(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	user, err := service.CreateUser(database.RegisterRequest{
		Username: "newauthor",
		Email:    "author@example.com",
		Password: "secret123",
		Role:     database.RoleAuthor,
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if user.Role != database.RoleAuthor {
		t.Errorf("注册时选定的角色应保留, got %q", user.Role)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	req := database.RegisterRequest{
		Username: "original",
		Email:    "dup@example.com",
		Password: "secret123",
	}
	if _, err := service.CreateUser(req); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}

	// 邮箱重复
	req.Username = "different"
	if _, err := service.CreateUser(req); err == nil {
		t.Error("重复邮箱应被拒绝")
	}

	// 用户名重复
	req.Username = "original"
	req.Email = "other@example.com"
	if _, err := service.CreateUser(req); err == nil {
		t.Error("重复用户名应被拒绝")
	}
}

func TestGetUserLookups(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	created, err := service.CreateUser(database.RegisterRequest{
		Username: "findme",
		Email:    "findme@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	byEmail, err := service.GetUserByEmail("findme@example.com")
	if err != nil || byEmail.ID != created.ID {
		t.Errorf("按邮箱查找失败: %v", err)
	}
	byName, err := service.GetUserByUsername("findme")
	if err != nil || byName.ID != created.ID {
		t.Errorf("按用户名查找失败: %v", err)
	}
	byID, err := service.GetUserByID(created.ID)
	if err != nil || byID.Username != "findme" {
		t.Errorf("按ID查找失败: %v", err)
	}

	if _, err := service.GetUserByEmail("missing@example.com"); err == nil {
		t.Error("查找不存在的用户应报错")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	Config.Cfg.SecretKey = "test-secret"
	Config.Cfg.TokenExpiry = 60

	token, err := Auth.GenerateToken(7, "tokenuser", database.RoleAuthor)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	claims, err := Auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("验证令牌失败: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "tokenuser" || claims.Role != database.RoleAuthor {
		t.Errorf("令牌声明不正确: %+v", claims)
	}

	// 篡改后的令牌不通过
	if _, err := Auth.ValidateToken(token + "x"); err == nil {
		t.Error("被篡改的令牌应验证失败")
	}
}
