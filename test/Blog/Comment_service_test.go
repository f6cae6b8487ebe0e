package Blog

import (
	"testing"
	"time"

	"blogplatform/database"
	"blogplatform/service/Blog"

	"gorm.io/gorm"
)

// setupCommentService 创建评论服务及依赖的文章服务
func setupCommentService(t *testing.T) (Blog.CommentServiceInterface, *gorm.DB, func()) {
	db := setupPostTestDB(t)

	originalDB := database.DB
	database.DB = db

	if _, err := Blog.NewPostService(db); err != nil {
		t.Fatalf("创建文章服务失败: %v", err)
	}
	service, err := Blog.NewCommentService(db)
	if err != nil {
		t.Fatalf("创建评论服务失败: %v", err)
	}

	cleanup := func() {
		database.DB = originalDB
	}
	return service, db, cleanup
}

func TestCreateComment(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := createTestUser(t, db, "postauthor", database.RoleAuthor)
	reader := createTestUser(t, db, "commenter", database.RoleReader)
	post := createTestPost(t, db, author.ID, "Discussed", "b", database.StatusPublished, database.AccessFree, time.Now())

	comment, err := service.CreateComment(post.ID, reader.ID, "不错的文章", nil)
	if err != nil {
		t.Fatalf("发表评论失败: %v", err)
	}
	if comment.Author.Username != "commenter" {
		t.Errorf("评论应带回作者信息, got %q", comment.Author.Username)
	}
	if comment.ParentID != nil {
		t.Error("顶层评论的parent应为空")
	}
}

func TestCreateCommentValidation(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := createTestUser(t, db, "vauthor", database.RoleAuthor)
	reader := createTestUser(t, db, "vreader", database.RoleReader)
	post := createTestPost(t, db, author.ID, "Validated", "b", database.StatusPublished, database.AccessFree, time.Now())

	// 空内容
	if _, err := service.CreateComment(post.ID, reader.ID, "   ", nil); err == nil {
		t.Error("空评论应被拒绝")
	}

	// 父评论不存在
	missing := uint(999)
	if _, err := service.CreateComment(post.ID, reader.ID, "reply", &missing); err == nil {
		t.Error("父评论不存在应报错")
	}

	// 父评论属于另一篇文章
	otherPost := createTestPost(t, db, author.ID, "Another", "b", database.StatusPublished, database.AccessFree, time.Now().Add(-time.Hour))
	parent, err := service.CreateComment(otherPost.ID, reader.ID, "elsewhere", nil)
	if err != nil {
		t.Fatalf("创建父评论失败: %v", err)
	}
	if _, err := service.CreateComment(post.ID, reader.ID, "cross reply", &parent.ID); err == nil {
		t.Error("跨文章回复应被拒绝")
	}
}

func TestListForPostThreading(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := createTestUser(t, db, "tauthor", database.RoleAuthor)
	reader := createTestUser(t, db, "treader", database.RoleReader)
	post := createTestPost(t, db, author.ID, "Threaded", "b", database.StatusPublished, database.AccessFree, time.Now())

	first, _ := service.CreateComment(post.ID, reader.ID, "first", nil)
	service.CreateComment(post.ID, author.ID, "a reply", &first.ID)
	service.CreateComment(post.ID, reader.ID, "second", nil)

	comments, err := service.ListForPost(post.ID)
	if err != nil {
		t.Fatalf("获取评论失败: %v", err)
	}
	// 只含顶层评论，回复挂在父评论下
	if len(comments) != 2 {
		t.Fatalf("应返回2条顶层评论, got %d", len(comments))
	}
	var withReply *database.Comment
	for i := range comments {
		if comments[i].ID == first.ID {
			withReply = &comments[i]
		}
	}
	if withReply == nil || len(withReply.Replies) != 1 {
		t.Fatal("回复应挂在父评论下")
	}
	if withReply.Replies[0].Body != "a reply" || withReply.Replies[0].Author.Username != "tauthor" {
		t.Errorf("回复内容或作者不正确: %+v", withReply.Replies[0])
	}
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := createTestUser(t, db, "dauthor", database.RoleAuthor)
	post := createTestPost(t, db, author.ID, "Deletable", "b", database.StatusPublished, database.AccessFree, time.Now())

	parent, _ := service.CreateComment(post.ID, author.ID, "parent", nil)
	service.CreateComment(post.ID, author.ID, "child", &parent.ID)

	if err := service.DeleteComment(parent.ID); err != nil {
		t.Fatalf("删除评论失败: %v", err)
	}

	var count int64
	db.Model(&database.Comment{}).Count(&count)
	if count != 0 {
		t.Errorf("删除父评论应级联删除回复, 剩余%d条", count)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := createTestUser(t, db, "causer", database.RoleAuthor)
	reader := createTestUser(t, db, "creader", database.RoleReader)
	post := createTestPost(t, db, author.ID, "Doomed Post", "b", database.StatusPublished, database.AccessFree, time.Now())

	parent, _ := service.CreateComment(post.ID, reader.ID, "will vanish", nil)
	service.CreateComment(post.ID, reader.ID, "also gone", &parent.ID)
	db.Create(&database.Like{PostID: post.ID, UserID: reader.ID})
	db.Create(&database.Bookmark{PostID: post.ID, UserID: reader.ID})

	if err := Blog.GlobalPostService.DeletePost(post.ID); err != nil {
		t.Fatalf("删除文章失败: %v", err)
	}

	var comments, likes, bookmarks int64
	db.Model(&database.Comment{}).Count(&comments)
	db.Model(&database.Like{}).Count(&likes)
	db.Model(&database.Bookmark{}).Count(&bookmarks)
	if comments != 0 || likes != 0 || bookmarks != 0 {
		t.Errorf("删除文章应级联清理评论/点赞/收藏: %d/%d/%d", comments, likes, bookmarks)
	}
}
