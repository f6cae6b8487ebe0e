package Blog

import (
	"context"
	"log"
	"net/http"

	"blogplatform/service/Blog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域控制交给路由层的CORS中间件
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveComments 文章评论实时通道。连接生命周期内只订阅该文章
// 一个主题，只做服务端到客户端的推送；连接时刻之后发布的评论
// 才会被收到（无回放）。客户端断开后立即退订
func LiveComments(c *gin.Context) {
	slug := c.Param("slug")

	if _, err := Blog.GlobalPostService.GetPostBySlug(slug); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文章不存在"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 读循环只用于探测断开，客户端不发送业务数据
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	pubsub := Blog.GlobalFanoutService.Subscribe(ctx, slug)
	if pubsub == nil {
		// Redis不可用：连接保持但没有推送，评论仍正常落库
		<-ctx.Done()
		return
	}
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		}
	}
}
