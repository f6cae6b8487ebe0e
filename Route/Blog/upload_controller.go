package Blog

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"blogplatform/Config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 允许上传的图片扩展名
var allowedImageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// UploadImage 上传题图，保存到媒体目录并返回引用路径。
// 本服务只负责保存并透传引用，解析由静态文件服务完成
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未提供图片文件"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range allowedImageExts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的图片格式: " + ext})
		return
	}

	dir := filepath.Join(Config.Cfg.MediaDir, "post_images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建媒体目录失败"})
		return
	}

	filename := uuid.NewString() + ext
	dst := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存图片失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "上传成功",
		"image":   "/media/post_images/" + filename,
	})
}
