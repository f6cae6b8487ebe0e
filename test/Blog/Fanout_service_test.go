package Blog

import (
	"context"
	"testing"

	"blogplatform/database"
	"blogplatform/service/Blog"
)

func TestCommentTopicName(t *testing.T) {
	if got := Blog.CommentTopic("my-first-post"); got != "comments_my-first-post" {
		t.Errorf("主题名应为 comments_<slug>, got %q", got)
	}
}

// TestPublishCommentDegradedMode Redis不可用时推送必须静默跳过，
// 绝不能让评论创建失败
func TestPublishCommentDegradedMode(t *testing.T) {
	service := Blog.NewFanoutService(nil)

	// 不应panic也没有错误可返回，fire-and-forget
	service.PublishComment("some-post", database.CommentEvent{
		Author:      "someone",
		Body:        "hello",
		CreatedDate: "Jan 01, 2026, 08:00 AM",
	})
}

func TestSubscribeDegradedMode(t *testing.T) {
	service := Blog.NewFanoutService(nil)

	if pubsub := service.Subscribe(context.Background(), "some-post"); pubsub != nil {
		t.Error("Redis不可用时订阅应返回nil")
	}
}
