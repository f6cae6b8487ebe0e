package Blog

import (
	"context"
	"encoding/json"
	"log"

	"blogplatform/database"

	"github.com/go-redis/redis/v8"
)

// GlobalFanoutService 全局 FanoutService 实例
var GlobalFanoutService FanoutServiceInterface

// FanoutServiceInterface 评论实时推送。
// 每篇文章一个主题（comments_<slug>），发布是 fire-and-forget：
// 推送失败只记日志不上抛，评论已落库，在场的订阅者可能错过
// 但刷新页面后能看到（至多一次、尽力投递）
type FanoutServiceInterface interface {
	PublishComment(slug string, event database.CommentEvent)
	Subscribe(ctx context.Context, slug string) *redis.PubSub
}

type fanoutService struct {
	redisClient *redis.Client
}

func NewFanoutService(client *redis.Client) FanoutServiceInterface {
	service := &fanoutService{redisClient: client}
	GlobalFanoutService = service
	return service
}

// CommentTopic 文章评论主题名
func CommentTopic(slug string) string {
	return "comments_" + slug
}

// PublishComment 推送新评论到文章主题，失败静默
func (s *fanoutService) PublishComment(slug string, event database.CommentEvent) {
	if s.redisClient == nil {
		log.Printf("Redis不可用，跳过评论推送: %s", slug)
		return
	}

	payload, err := json.Marshal(map[string]database.CommentEvent{"comment": event})
	if err != nil {
		log.Printf("评论推送序列化失败: %v", err)
		return
	}

	ctx := context.Background()
	if err := s.redisClient.Publish(ctx, CommentTopic(slug), payload).Err(); err != nil {
		log.Printf("评论推送失败（已忽略，评论已保存）: %v", err)
	}
}

// Subscribe 订阅文章评论主题，Redis不可用时返回nil，
// 调用方负责在连接断开时关闭订阅
func (s *fanoutService) Subscribe(ctx context.Context, slug string) *redis.PubSub {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.Subscribe(ctx, CommentTopic(slug))
}
