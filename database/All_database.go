package database

import (
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var (
	DB  *gorm.DB
	err error
)

func InitDB(path string) {
	// TranslateError 让唯一约束冲突以 gorm.ErrDuplicatedKey 返回，
	// 点赞/收藏的翻转操作依赖这个错误做并发判定
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// 自动迁移表结构
	err = DB.AutoMigrate(
		&User{},
		&Profile{},
		&ProfileFollow{},
		&Category{},
		&Tag{},
		&Post{},
		&Comment{},
		&Like{},
		&Bookmark{},
	)
	if err != nil {
		log.Fatal("数据库迁移失败:", err)
	}

	log.Println("数据库连接成功")
}
