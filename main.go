// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/client"
	"github.com/pillcare/pillcare-backend/config"
	"github.com/pillcare/pillcare-backend/detect"
	"github.com/pillcare/pillcare-backend/endpoint"
	"github.com/pillcare/pillcare-backend/middleware"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/storage"
	"github.com/pillcare/pillcare-backend/util"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	// The .env file is only read during LoadConfig, so the signing secret
	// has to be re-read afterwards.
	if secret := os.Getenv("JWTSECRET"); secret != "" {
		util.SetJWTSecret(secret)
	}

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Pharmacy{},
		&model.Consultation{},
		&model.Pill{},
		&model.Record{},
		&model.RecordDetail{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("Error migrating schema: %v", err)
	}

	util.SetAuditLoggerDB(db)
	util.InitPillCache(1000)
	util.InitUserCache(1000)
	if err := util.InitGeoIP(""); err != nil {
		log.Printf("GeoIP disabled: %v", err)
	}
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, rate limiting disabled: %v", err)
	}

	imageStore, err := storage.NewImageStore(cfg.ImageDir)
	if err != nil {
		log.Fatalf("Error preparing image directory: %v", err)
	}

	detectURL := cfg.DetectURL
	if detectURL == "" {
		detectURL = "http://localhost:8500"
	}
	detector := detect.NewHTTPDetector(detectURL)

	endpoint.SetKakaoClient(client.NewKakaoClient())
	endpoint.SetDrugSearchClient(client.NewDrugSearchClient())

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.DetectorMiddleware(detector))
	router.Use(middleware.ImageStoreMiddleware(imageStore))
	router.Use(middleware.EndpointCallLogger())

	// Basic HTTP handler for root path
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	// Uploaded originals are served back to the app by path.
	router.Static("/original_images", imageStore.Dir())

	auth := router.Group("/api/auth", middleware.RateLimiter(middleware.RateLimitConfig{}))
	{
		auth.POST("/kakao", endpoint.KakaoLogin)
		auth.POST("/refresh", endpoint.RefreshToken)
		auth.GET("/users/me", middleware.AuthRequired(), endpoint.CurrentUser)
	}

	consultation := router.Group("/api/consultation")
	{
		consultation.GET("/history", endpoint.GetConsultationHistory)
		consultation.GET("/history_detail/:id", endpoint.GetConsultationDetail)
		consultation.POST("/insert", endpoint.InsertConsultation)
		consultation.POST("/request", endpoint.RequestConsultation)
		consultation.PUT("/update/:id", endpoint.UpdateConsultation)
		consultation.DELETE("/delete/:id", endpoint.DeleteConsultation)
	}

	pill := router.Group("/api/pill")
	{
		pill.GET("/search", endpoint.SearchPill)
		pill.GET("/detail", endpoint.PillDetail)
	}

	record := router.Group("/api/record", middleware.AuthRequired())
	{
		record.POST("/insert", endpoint.CreateRecord)
		record.GET("/read", endpoint.ReadRecords)
		record.DELETE("/delete", endpoint.DeleteRecord)
		record.DELETE("/pill_delete", endpoint.DeleteRecordPill)
	}

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
