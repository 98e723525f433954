package stubserver

import (
	"fmt"
	"log"
	"sync"
	"time"

	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/symptomchat/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server plays a Script back over the dialogue service's HTTP contract
type Server struct {
	script *Script

	mu         sync.Mutex
	interviews map[string]*interview
}

// New creates a server for script (DefaultScript when nil)
func New(script *Script) *Server {
	if script == nil {
		script = DefaultScript()
	}
	return &Server{
		script:     script,
		interviews: make(map[string]*interview),
	}
}

// Engine builds the gin engine with every route registered
func (s *Server) Engine(cfg *utils.Config) *gin.Engine {
	engine := gin.Default()
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Browser front ends may be served from another origin
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.GetList(utils.KeyCORSOrigins, "*"),
		AllowMethods:     []string{"OPTIONS", "GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s.RegisterRoutes(&engine.RouterGroup)
	return engine
}

// RegisterRoutes registers the dialogue routes on g
func (s *Server) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/health", getStatus)

	g.POST("/chat", s.chat)              // Initial message, answer, or free text
	g.POST("/reset", s.reset)            // Start a fresh interview
	g.GET("/symptoms", s.symptoms)       // Known symptom names
	g.POST("/feedback", s.feedback)      // Free-form feedback
	g.POST("/health_data", s.healthData) // Manually measured vitals
	g.POST("/edit_profile", s.editProfile)
}

// Start loads the configured script and serves until the listener fails
func Start(cfg *utils.Config) error {
	script := DefaultScript()
	if path := cfg.Get(utils.KeyStubScript); path != "" {
		loaded, err := LoadScript(path)
		if err != nil {
			return err
		}
		script = loaded
	}

	port := cfg.GetWithDefault(utils.KeyAPIPort, "5000")
	log.Printf("[STUB]: serving %d scripted questions on :%s", len(script.Questions), port)

	if err := New(script).Engine(cfg).Run(":" + port); err != nil {
		return fmt.Errorf("failed to start stub server: %w", err)
	}
	return nil
}

// interview returns the user's interview, creating it on first use. Caller holds mu.
func (s *Server) interview(userID string) *interview {
	iv, ok := s.interviews[userID]
	if !ok {
		iv = newInterview()
		s.interviews[userID] = iv
	}
	return iv
}

// restart replaces the user's interview with a fresh one. Caller holds mu.
func (s *Server) restart(userID string) *interview {
	prev := s.interview(userID)
	iv := newInterview()
	iv.Age, iv.Sex = prev.Age, prev.Sex
	s.interviews[userID] = iv
	return iv
}

// Evidence returns a copy of what the user's interview has collected
func (s *Server) Evidence(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if iv, ok := s.interviews[userID]; ok {
		return append([]string(nil), iv.Evidence...)
	}
	return nil
}
