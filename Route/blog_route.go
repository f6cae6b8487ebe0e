package Route

import (
	"log"
	"time"

	"blogplatform/Config"
	"blogplatform/Route/Auth"
	"blogplatform/Route/Blog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func BlogRoute() {
	r := gin.Default()

	// 配置CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8080", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           120 * time.Hour,
	}))

	// 全局订阅状态中间件：每个请求重算付费身份，惰性创建资料
	r.Use(Auth.SubscriptionMiddleware())

	// 媒体文件服务
	r.Static("/media", Config.Cfg.MediaDir)

	// 公开页面路由
	r.GET("/", Blog.ListPosts)
	r.GET("/post/:slug", Blog.GetPostDetail)
	r.GET("/category/:slug", Blog.ListCategoryPosts)

	// 评论实时通道（仅订阅推送）
	r.GET("/ws/comments/:slug", Blog.LiveComments)

	// 需要认证的页面操作
	r.POST("/post/:slug/comment", Auth.AuthMiddleware(), Blog.AddComment)
	r.POST("/subscribe/process", Auth.AuthMiddleware(), Auth.ProcessSubscription)
	r.GET("/bookmarks", Auth.AuthMiddleware(), Blog.ListBookmarks)

	// API 路由
	api := r.Group("/api")

	// 公开路由
	api.POST("/register", Auth.Register)
	api.POST("/login", Auth.Login)
	api.POST("/logout", Auth.Logout)

	// 需要认证的路由
	auth := api.Group("/")
	auth.Use(Auth.AuthMiddleware())
	{
		auth.POST("/post/:slug/like", Blog.ToggleLike)
		auth.POST("/post/:slug/bookmark", Blog.ToggleBookmark)
		auth.GET("/profile", Auth.GetProfile)
		auth.POST("/profile/:username/follow", Auth.ToggleFollow)
		auth.PUT("/posts/:slug", Blog.UpdatePost)
		auth.DELETE("/posts/:slug", Blog.DeletePost)
	}

	// 需要作者角色的路由
	author := api.Group("/")
	author.Use(Auth.AuthMiddleware(), Auth.AuthorMiddleware())
	{
		author.POST("/posts", Blog.CreatePost)
		author.POST("/upload/image", Blog.UploadImage)
	}

	// 启动服务器
	addr := ":" + Config.Cfg.ServerPort
	log.Printf("服务器监听 %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}
