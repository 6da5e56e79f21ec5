package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	v1 "pixshelf/api/v1"
	"pixshelf/config"
	"pixshelf/dao"
	"pixshelf/internal/storage"
	myvalidator "pixshelf/internal/validator"
	"pixshelf/middleware"
	"pixshelf/model"
	"pixshelf/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../"
	}
	config.InitConfig(configPath)
	config.InitRedis()

	db, err := gorm.Open(mysql.Open(config.GlobalConfig.MySQL.DSN), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Image{}); err != nil {
		panic(err)
	}

	objectStore, err := storage.NewS3Store(config.GlobalConfig.S3)
	if err != nil {
		logrus.Fatalf("Object store init failed: %v", err)
	}

	// Explicit wiring: stores into services, services into handlers.
	userDAO := dao.NewUserDAO(db)
	imageDAO := dao.NewImageDAO(db)
	userService := service.NewUserService(userDAO)
	imageService := service.NewImageService(imageDAO)
	userAPI := v1.NewUserAPI(userService)
	imageAPI := v1.NewImageAPI(imageService, objectStore)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server Running")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("phone", myvalidator.IsPhone); err != nil {
			panic(err)
		}
	}

	user := r.Group("/user")
	{
		user.POST("/register", userAPI.Register)
		loginLimiter := middleware.LoginRateLimiter(middleware.NewRedisRateLimitStore(config.RedisClient), 5, time.Minute)
		user.POST("/login", loginLimiter, userAPI.Login)
		user.POST("/logout", userAPI.Logout)
		user.POST("/verify-email", userAPI.VerifyIdentity)
		user.POST("/reset-password", userAPI.ResetPassword)
		user.GET("/me", middleware.RequireSession(), userAPI.Me)
	}

	images := r.Group("/images", middleware.RequireSession())
	{
		images.POST("/upload", imageAPI.Upload)
		images.GET("", imageAPI.List)
		images.PUT("/reorder", imageAPI.Reorder)
		images.PATCH("/:id", imageAPI.Update)
		images.DELETE("/:id", imageAPI.Delete)
	}

	if err := r.Run(config.GlobalConfig.Server.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
