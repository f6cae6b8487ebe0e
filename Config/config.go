package Config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	DatabasePath  string `mapstructure:"DATABASE_PATH"`
	SecretKey     string `mapstructure:"SECRET_KEY"`
	TokenExpiry   int    `mapstructure:"TOKEN_EXPIRY_MINUTES"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	MediaDir      string `mapstructure:"MEDIA_DIR"`
}

var Cfg Config

func InitConfig() error {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// 设置默认值
	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("DATABASE_PATH", "blog.db")
	viper.SetDefault("TOKEN_EXPIRY_MINUTES", 1440) // 24小时
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MEDIA_DIR", "./media")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件未找到时使用环境变量
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}

	// 必须配置项验证
	if Cfg.SecretKey == "" {
		return errors.New("SECRET_KEY 必须配置")
	}
	return nil
}
