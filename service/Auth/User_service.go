package Auth

import (
	"errors"

	"blogplatform/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GlobalUserService 全局 UserService 实例
var GlobalUserService UserService

// UserService 用户服务接口
type UserService interface {
	CreateUser(req database.RegisterRequest) (*database.User, error)
	GetUserByEmail(email string) (*database.User, error)
	GetUserByUsername(username string) (*database.User, error)
	GetUserByID(id uint) (*database.User, error)
	TouchLastLogin(userID uint) error
}

// 用户服务实现
type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) (UserService, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}

	service := &userService{db}
	GlobalUserService = service
	return service, nil
}

// CreateUser 创建用户，角色在注册时选定，默认为 reader
func (s *userService) CreateUser(req database.RegisterRequest) (*database.User, error) {
	var existing database.User
	if err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		return nil, errors.New("邮箱或用户名已被注册")
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = database.RoleReader
	}

	user := &database.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := s.db.Create(user).Error; err != nil {
		// 唯一索引兜底并发注册
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.New("邮箱或用户名已被注册")
		}
		return nil, err
	}

	return user, nil
}

// GetUserByEmail 根据邮箱获取用户（邮箱为登录凭证）
func (s *userService) GetUserByEmail(email string) (*database.User, error) {
	var user database.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 根据用户名获取用户
func (s *userService) GetUserByUsername(username string) (*database.User, error) {
	var user database.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID 根据ID获取用户
func (s *userService) GetUserByID(id uint) (*database.User, error) {
	var user database.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin 更新最后登录时间
func (s *userService) TouchLastLogin(userID uint) error {
	return s.db.Model(&database.User{}).Where("id = ?", userID).
		Update("last_login", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// HashPassword 生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 校验密码
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
