package Blog

import (
	"errors"

	"blogplatform/database"

	"gorm.io/gorm"
)

// GlobalEngagementService 全局 EngagementService 实例
var GlobalEngagementService EngagementServiceInterface

// EngagementServiceInterface 点赞/收藏服务接口。
// 两个切换操作都是自反的幂等翻转：先尝试删除已有记录，
// 没有记录时插入，插入与唯一约束竞争——并发的相同请求撞上
// 约束冲突按翻转成功处理而不是报错，保证并发双击后恰好
// 存在一条记录
type EngagementServiceInterface interface {
	ToggleLike(postID, userID uint) (liked bool, count int64, err error)
	ToggleBookmark(postID, userID uint) (bookmarked bool, err error)
	IsLiked(postID, userID uint) (bool, error)
	IsBookmarked(postID, userID uint) (bool, error)
	LikeCount(postID uint) (int64, error)
	BookmarkedPostIDs(userID uint) ([]uint, error)

	// ListBookmarks 收藏列表，按收藏时间倒序，页码越界收敛到最后一页
	ListBookmarks(userID uint, page int) ([]database.Bookmark, int64, int, error)
}

type engagementService struct {
	db *gorm.DB
}

func NewEngagementService(db *gorm.DB) (EngagementServiceInterface, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}

	service := &engagementService{db}
	GlobalEngagementService = service
	return service, nil
}

// ToggleLike 点赞翻转，返回翻转后的状态和当前点赞总数
func (s *engagementService) ToggleLike(postID, userID uint) (bool, int64, error) {
	liked, err := s.flip(&database.Like{PostID: postID, UserID: userID},
		"post_id = ? AND user_id = ?", postID, userID)
	if err != nil {
		return false, 0, err
	}

	count, err := s.LikeCount(postID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// ToggleBookmark 收藏翻转
func (s *engagementService) ToggleBookmark(postID, userID uint) (bool, error) {
	return s.flip(&database.Bookmark{PostID: postID, UserID: userID},
		"post_id = ? AND user_id = ?", postID, userID)
}

// flip 通用翻转：删到了就是取消；没删到则插入，
// 唯一约束冲突说明有并发相同请求已插入，按成功处理
func (s *engagementService) flip(record interface{}, query string, args ...interface{}) (bool, error) {
	res := s.db.Where(query, args...).Delete(record)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	if err := s.db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发重复提交，唯一约束保证只有一条记录
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// IsLiked 用户是否已点赞
func (s *engagementService) IsLiked(postID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&database.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, err
}

// IsBookmarked 用户是否已收藏
func (s *engagementService) IsBookmarked(postID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&database.Bookmark{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, err
}

// LikeCount 文章点赞总数
func (s *engagementService) LikeCount(postID uint) (int64, error) {
	var count int64
	err := s.db.Model(&database.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// BookmarkedPostIDs 用户收藏的文章ID集合（列表页标记用）
func (s *engagementService) BookmarkedPostIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&database.Bookmark{}).
		Where("user_id = ?", userID).Pluck("post_id", &ids).Error
	return ids, err
}

// ListBookmarks 收藏列表
func (s *engagementService) ListBookmarks(userID uint, page int) ([]database.Bookmark, int64, int, error) {
	q := s.db.Model(&database.Bookmark{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, 1, err
	}

	page, offset := clampPage(page, total, BookmarkPageSize)

	var bookmarks []database.Bookmark
	err := s.db.Preload("Post").Preload("Post.Author").Preload("Post.Category").Preload("Post.Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(BookmarkPageSize).
		Find(&bookmarks).Error
	if err != nil {
		return nil, 0, page, err
	}
	return bookmarks, total, page, nil
}
