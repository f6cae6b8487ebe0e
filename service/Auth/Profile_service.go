package Auth

import (
	"errors"
	"time"

	"blogplatform/database"

	"gorm.io/gorm"
)

// SubscriptionDays 订阅有效期（天），自开通当天起算
const SubscriptionDays = 30

// GlobalProfileService 全局 ProfileService 实例
var GlobalProfileService ProfileService

// ProfileService 用户资料与订阅服务接口
type ProfileService interface {
	// GetOrCreate 获取资料，不存在时惰性创建（缺失资料自愈，不视为错误）
	GetOrCreate(userID uint) (*database.Profile, error)

	// IsPremium 按日期判定订阅是否有效，纯函数，每个请求重新计算，不做跨请求缓存
	IsPremium(profile *database.Profile, now time.Time) bool

	// Subscribe 开通订阅，自当天起 days 天内有效
	Subscribe(userID uint, days int) (*database.Profile, error)

	// ToggleFollow 关注/取关切换，关注关系为单向边
	ToggleFollow(followerID, followedID uint) (bool, error)

	FollowerCount(userID uint) (int64, error)
}

type profileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) (ProfileService, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}

	service := &profileService{db}
	GlobalProfileService = service
	return service, nil
}

// GetOrCreate 获取或惰性创建用户资料
func (s *profileService) GetOrCreate(userID uint) (*database.Profile, error) {
	var profile database.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = database.Profile{UserID: userID}
	if err := s.db.Create(&profile).Error; err != nil {
		// 并发请求同时创建时只会有一条成功，读回即可
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if rerr := s.db.Where("user_id = ?", userID).First(&profile).Error; rerr != nil {
				return nil, rerr
			}
			return &profile, nil
		}
		return nil, err
	}
	return &profile, nil
}

// IsPremium 订阅有效判定：已订阅且（无截止日期或截止日期不早于今天）
// 订阅按日期比较过期而不是靠事件触发，必须每个请求重算
func (s *profileService) IsPremium(profile *database.Profile, now time.Time) bool {
	if profile == nil || !profile.IsSubscribed {
		return false
	}
	if profile.SubscriptionEndDate == nil {
		return true
	}
	return !dateOnly(*profile.SubscriptionEndDate).Before(dateOnly(now))
}

// Subscribe 开通订阅
func (s *profileService) Subscribe(userID uint, days int) (*database.Profile, error) {
	profile, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	end := dateOnly(time.Now().AddDate(0, 0, days))
	profile.IsSubscribed = true
	profile.SubscriptionEndDate = &end
	if err := s.db.Model(profile).Updates(map[string]interface{}{
		"is_subscribed":         true,
		"subscription_end_date": end,
	}).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// ToggleFollow 关注切换：先删后建，唯一约束兜底并发重复提交
func (s *profileService) ToggleFollow(followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, errors.New("不能关注自己")
	}

	res := s.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&database.ProfileFollow{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	err := s.db.Create(&database.ProfileFollow{FollowerID: followerID, FollowedID: followedID}).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, err
	}
	return true, nil
}

// FollowerCount 粉丝数
func (s *profileService) FollowerCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&database.ProfileFollow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

// dateOnly 截断到日期，订阅有效性按天比较
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
