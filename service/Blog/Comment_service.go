package Blog

import (
	"errors"
	"strings"

	"blogplatform/database"

	"gorm.io/gorm"
)

// GlobalCommentService 全局 CommentService 实例
var GlobalCommentService CommentServiceInterface

// CommentServiceInterface 评论服务接口
type CommentServiceInterface interface {
	// CreateComment 创建评论，parentID 非空时为对父评论的回复，
	// 父评论必须属于同一篇文章
	CreateComment(postID, authorID uint, body string, parentID *uint) (*database.Comment, error)

	// ListForPost 返回文章的顶层评论（含回复和作者信息），按创建时间倒序
	ListForPost(postID uint) ([]database.Comment, error)

	// DeleteComment 删除评论并级联删除其回复
	DeleteComment(commentID uint) error
}

type commentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) (CommentServiceInterface, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}

	service := &commentService{db}
	GlobalCommentService = service
	return service, nil
}

// CreateComment 创建评论
func (s *commentService) CreateComment(postID, authorID uint, body string, parentID *uint) (*database.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("评论内容不能为空")
	}

	if parentID != nil {
		var parent database.Comment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("父评论不存在")
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, errors.New("父评论不属于该文章")
		}
	}

	comment := &database.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
		ParentID: parentID,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}

	// 回读作者信息，实时推送和响应需要展示名
	if err := s.db.Preload("Author").First(comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ListForPost 获取文章顶层评论及其回复
func (s *commentService) ListForPost(postID uint) ([]database.Comment, error) {
	var comments []database.Comment
	err := s.db.Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Replies.Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// DeleteComment 删除评论及其回复
func (s *commentService) DeleteComment(commentID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", commentID).Delete(&database.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Comment{}, commentID).Error
	})
}
