package main

import (
	"log"

	"blogplatform/Config"
	"blogplatform/Route"
	"blogplatform/database"
	"blogplatform/service/Auth"
	"blogplatform/service/Blog"
)

func main() {
	// 初始化配置
	if err := Config.InitConfig(); err != nil {
		log.Fatal("初始化配置失败:", err)
	}

	// 初始化数据库
	database.InitDB(Config.Cfg.DatabasePath)

	// 初始化Redis（失败时评论推送降级，服务继续运行）
	if err := database.InitRedis(Config.Cfg.RedisAddr, Config.Cfg.RedisPassword, Config.Cfg.RedisDB); err != nil {
		log.Fatal("初始化Redis失败:", err)
	}

	// 初始化服务（数据库已初始化后）
	if _, err := Auth.NewUserService(database.DB); err != nil {
		log.Fatal("初始化用户服务失败:", err)
	}
	if _, err := Auth.NewProfileService(database.DB); err != nil {
		log.Fatal("初始化资料服务失败:", err)
	}
	if _, err := Blog.NewPostService(database.DB); err != nil {
		log.Fatal("初始化文章服务失败:", err)
	}
	if _, err := Blog.NewCommentService(database.DB); err != nil {
		log.Fatal("初始化评论服务失败:", err)
	}
	if _, err := Blog.NewEngagementService(database.DB); err != nil {
		log.Fatal("初始化互动服务失败:", err)
	}
	Blog.NewFanoutService(database.GetRedis())

	// 启动路由
	log.Println("服务器启动中...")
	Route.BlogRoute()
}
