package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"placement-service/internal/analyzer"
	"placement-service/internal/bank"
	"placement-service/internal/config"
	"placement-service/internal/db"
	"placement-service/internal/event"
	"placement-service/internal/handlers"
	"placement-service/internal/repository"
	"placement-service/internal/service"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()

	db.InitMongo(cfg.MongoDB.URI)
	database := db.Client.Database(cfg.MongoDB.Database)

	// Repositories
	sessionRepo := repository.NewSessionRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	answerRepo := repository.NewAnswerRepository(database)
	resultRepo := repository.NewResultRepository(database)

	// Question bank: immutable after load, shared by every session.
	questionBank, err := loadBank(cfg, questionRepo)
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	log.Printf("Question bank loaded: %d questions", questionBank.Size())

	// Advisory analyzer is optional; the scorer falls back to the
	// rule-based report whenever it is absent or fails.
	var advisor analyzer.Advisor
	if cfg.Advisor.Enabled && cfg.Advisor.APIKey != "" {
		gemini, err := analyzer.NewGeminiAdvisor(context.Background(), cfg.Advisor.APIKey, cfg.Advisor.Model)
		if err != nil {
			log.Printf("Advisor disabled: %v", err)
		} else {
			advisor = gemini
		}
	} else {
		log.Println("Advisor not configured, reports use the rule-based fallback")
	}

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, placement events will not be published")
	}

	sessionService := service.NewSessionService(
		sessionRepo,
		answerRepo,
		resultRepo,
		questionBank,
		advisor,
		cfg.Test,
		cfg.Media.TTSBaseURL,
		cfg.Media.TTSVoice,
	)
	questionService := service.NewQuestionService(questionRepo)
	resultService := service.NewResultService(resultRepo)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	resultHandler := handlers.NewResultHandler(resultService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	publicQuestion := r.Group("/public/placement/question")
	{
		publicQuestion.GET("/", questionHandler.ListQuestions)
		publicQuestion.GET("/:id", questionHandler.GetQuestion)
	}

	protectedQuestion := r.Group("/protected/placement/question")
	{
		protectedQuestion.POST("/", questionHandler.CreateQuestion)
		protectedQuestion.PUT("/:id", questionHandler.UpdateQuestion)
		protectedQuestion.DELETE("/:id", questionHandler.DeleteQuestion)
	}

	publicUser := r.Group("/public/placement/user")
	{
		publicUser.GET("/:id/results", resultHandler.GetResultsByUser)
		publicUser.GET("/:id/sessions", sessionHandler.GetUserSessions)
	}

	setupSessionRoutes(r, sessionHandler, resultHandler, publisher)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// loadBank builds the immutable question bank, either from the on-disk JSON
// blob or from the questions collection.
func loadBank(cfg *config.Config, questionRepo *repository.QuestionRepository) (*bank.Bank, error) {
	if cfg.Bank.Source == "mongo" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		questions, err := questionRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return bank.FromQuestions(questions)
	}
	return bank.Load(cfg.Bank.File)
}

func setupSessionRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler, resultHandler *handlers.ResultHandler, publisher *event.EventPublisher) {
	protectedSession := r.Group("/protected/placement/session")

	// Authentication middleware: the gateway stamps X-User-ID.
	protectedSession.Use(func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	})

	protectedSession.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[SESSION] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
			param.ErrorMessage,
		)
	}))

	{
		protectedSession.POST("/", func(c *gin.Context) {
			sessionHandler.CreateSession(c)
			if publisher != nil {
				publisher.Publish("placement.session.created", gin.H{
					"user_id": c.GetHeader("X-User-ID"),
				})
			}
		})

		protectedSession.GET("/:id/next", func(c *gin.Context) {
			sessionHandler.NextQuestion(c)
			if publisher != nil {
				publisher.Publish("placement.question.requested", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
				})
			}
		})

		protectedSession.POST("/:id/answer", func(c *gin.Context) {
			sessionHandler.SubmitAnswer(c)
			if publisher != nil {
				publisher.Publish("placement.answer.submitted", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
				})
			}
		})

		protectedSession.GET("/:id/report", func(c *gin.Context) {
			sessionHandler.GetReport(c)
			if publisher != nil {
				publisher.Publish("placement.report.requested", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
				})
			}
		})

		protectedSession.POST("/:id/pause", func(c *gin.Context) {
			sessionHandler.PauseSession(c)
			if publisher != nil {
				publisher.Publish("placement.session.paused", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
				})
			}
		})

		protectedSession.POST("/:id/resume", func(c *gin.Context) {
			sessionHandler.ResumeSession(c)
			if publisher != nil {
				publisher.Publish("placement.session.resumed", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
				})
			}
		})

		protectedSession.GET("/:id/progress", sessionHandler.GetSessionProgress)
	}

	publicSession := r.Group("/public/placement/session")
	{
		publicSession.GET("/:id", sessionHandler.GetSession)
		publicSession.GET("/:id/progress", sessionHandler.GetSessionProgress)
		publicSession.GET("/:id/answers", sessionHandler.GetSessionAnswers)
		publicSession.GET("/:id/result", resultHandler.GetResultBySession)
	}
}
