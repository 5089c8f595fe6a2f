package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"safety-studio/internal/config"
	"safety-studio/internal/handler"
	"safety-studio/internal/logger"
	"safety-studio/internal/middleware"
	"safety-studio/internal/model"
	"safety-studio/internal/retry"
	"safety-studio/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gorm.io/gorm"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	var db *gorm.DB
	err := retry.Do(context.Background(), 3, time.Second, func() error {
		var openErr error
		db, openErr = cfg.OpenGormDB()
		return openErr
	})
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := model.AutoMigrate(db); err != nil {
		slog.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	aiSvc := service.NewAIService(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	imageSvc := service.NewImageService(cfg.ImageAPI.BaseURL, cfg.ImageAPI.APIToken, cfg.ImageAPI.ModelVersion)
	mediaSvc := service.NewMediaService(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
	topicSvc := service.NewTopicService(db, aiSvc, cfg.Content.TopicsPerDay)
	contentSvc := service.NewContentService(db, topicSvc, aiSvc, imageSvc, cfg.Content.Platforms, cfg.Content.ExcludeDays)
	librarySvc := service.NewLibraryService(db)
	authSvc := service.NewAuthService(db)

	topicH := handler.NewTopicHandler(topicSvc)
	contentH := handler.NewContentHandler(contentSvc)
	generateH := handler.NewGenerateHandler(aiSvc, imageSvc)
	libraryH := handler.NewLibraryHandler(librarySvc)
	mediaH := handler.NewMediaHandler(mediaSvc)
	authH := handler.NewAuthHandler(authSvc)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/login", authH.Login)

	api := r.Group("/api", middleware.JWTAuth())
	api.POST("/topics/select", topicH.Select)
	api.POST("/content/generate", contentH.Generate)
	api.GET("/content/today", contentH.Today)
	api.POST("/content/mark-posted", contentH.MarkPosted)
	api.POST("/generate-image", generateH.Image)
	api.POST("/generate-social", generateH.Social)
	api.POST("/prompts/save", libraryH.SavePrompt)
	api.GET("/prompts/load", libraryH.LoadPrompts)
	api.DELETE("/prompts/delete", libraryH.DeletePrompt)
	api.POST("/images/save", libraryH.SaveImage)
	api.GET("/images", libraryH.ListImages)
	api.DELETE("/images/:id", libraryH.DeleteImage)
	api.POST("/cloudinary/upload", mediaH.Upload)
	api.POST("/cloudinary/transform", mediaH.Transform)

	admin := api.Group("", middleware.RequireRole("admin"))
	admin.POST("/topics/discover", topicH.Discover)
	admin.POST("/topics/clear", topicH.Clear)

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
