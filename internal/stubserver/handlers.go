package stubserver

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/symptomchat/pkg/sdk"
	"github.com/ethanbaker/symptomchat/pkg/session"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "Invalid request: No JSON data provided."
	msgUnderage       = "This application is for users aged 18 and above."
	msgUnderageDetail = "This application is for users aged 18 and above. Please consult a pediatrician for children."
	msgNoPayload      = "No input, answer, or description provided."
	msgNoQuestion     = "No previous question to answer. Please provide symptoms first."
	msgBadAnswer      = "Couldn’t understand your answer. Please select from the options or describe your symptom."
	msgFeedbackNeeds  = "User ID and feedback are required"
	msgFeedbackThanks = "Thank you for your feedback!"
	msgHealthData     = "Health data submitted successfully."
	msgProfile        = "Profile updated successfully."
	msgUserRequired   = "User ID is required"
)

// Fever and hypertension thresholds applied to manually submitted vitals
const (
	feverCelsius      = 38.0
	highSystolic      = 140
	highDiastolic     = 90
	defaultUserBucket = "default"
)

// Return status of the API
func getStatus(c *gin.Context) {
	res := api_types.NewSuccessResponse("OK", nil)
	c.JSON(res.AsGinResponse())
}

// chat handles POST /chat: an initial message starts the interview, answers advance it
func (s *Server) chat(c *gin.Context) {
	var req sdk.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sdk.ChatResponse{Message: msgInvalidRequest})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = defaultUserBucket
	}

	if req.Age != nil && *req.Age < session.MinimumAge {
		c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgUnderage, ErrorMessage: msgUnderageDetail})
		return
	}

	input := ""
	if req.Input != nil {
		input = strings.TrimSpace(*req.Input)
	}
	freeText := ""
	if req.FreeText != nil {
		freeText = strings.TrimSpace(*req.FreeText)
	}
	if input == "" && len(req.Answer) == 0 && freeText == "" {
		c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgNoPayload})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var iv *interview
	if input != "" {
		iv = s.restart(userID)
		if req.Age != nil {
			iv.Age = *req.Age
		}
		if req.Sex != "" {
			iv.Sex = req.Sex
		}
		iv.Evidence = append(iv.Evidence, input)
		log.Printf("[STUB]: interview %s started for %s", iv.ID, userID)
	} else {
		iv = s.interview(userID)
		if !iv.Pending || iv.Step >= len(s.script.Questions) {
			c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgNoQuestion})
			return
		}

		answer := req.Answer
		if len(answer) == 0 {
			answer = []string{freeText}
		}

		q := s.script.Questions[iv.Step]
		if !acceptAnswer(q, answer) {
			c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgBadAnswer})
			return
		}

		iv.Evidence = append(iv.Evidence, fmt.Sprintf("%s %s", q.Text, strings.Join(answer, ", ")))
		iv.Step++
	}

	c.JSON(http.StatusOK, s.next(userID, iv))
}

// next builds the response after the interview has advanced, asking the
// pending question or concluding when the script is exhausted. Caller holds mu.
func (s *Server) next(userID string, iv *interview) sdk.ChatResponse {
	resp := sdk.ChatResponse{SmartwatchData: s.readings()}

	if iv.Step < len(s.script.Questions) {
		iv.Pending = true
		resp.Message = s.withNotice(s.script.ProgressMessage)
		resp.FollowUp = s.script.Questions[iv.Step].FollowUp()
		return resp
	}

	log.Printf("[STUB]: interview %s concluded with %d pieces of evidence", iv.ID, len(iv.Evidence))
	resp.Message = s.withNotice(s.script.FinalMessage)
	resp.FollowUp = sdk.NewFinalFollowUp()
	s.restart(userID)
	return resp
}

// withNotice appends the device notice when no smartwatch is available
func (s *Server) withNotice(message string) string {
	if s.script.DeviceAvailable {
		return message
	}
	return message + "\n\n" + sdk.DeviceNotice
}

func (s *Server) readings() *sdk.SmartwatchData {
	if !s.script.DeviceAvailable {
		return &sdk.SmartwatchData{SpO2: sdk.NotAvailable, HeartRate: sdk.NotAvailable}
	}
	return &sdk.SmartwatchData{
		SpO2:      sdk.NumberReading(s.script.Readings.SpO2),
		HeartRate: sdk.NumberReading(s.script.Readings.HeartRate),
	}
}

// reset handles POST /reset
func (s *Server) reset(c *gin.Context) {
	var req sdk.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sdk.ChatResponse{Message: msgUserRequired})
		return
	}

	s.mu.Lock()
	s.restart(req.UserID)
	s.mu.Unlock()

	c.JSON(http.StatusOK, sdk.ChatResponse{Message: s.script.ResetMessage})
}

// symptoms handles GET /symptoms
func (s *Server) symptoms(c *gin.Context) {
	if len(s.script.Symptoms) == 0 {
		c.JSON(http.StatusNotFound, sdk.SymptomsResponse{Symptoms: []string{}})
		return
	}
	c.JSON(http.StatusOK, sdk.SymptomsResponse{Symptoms: s.script.Symptoms})
}

// feedback handles POST /feedback
func (s *Server) feedback(c *gin.Context) {
	var req sdk.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || strings.TrimSpace(req.Feedback) == "" {
		c.JSON(http.StatusBadRequest, sdk.ChatResponse{Message: msgFeedbackNeeds})
		return
	}

	log.Printf("[STUB]: feedback from %s: %s", req.UserID, req.Feedback)
	c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgFeedbackThanks})
}

// healthData handles POST /health_data, folding abnormal vitals into the user's evidence
func (s *Server) healthData(c *gin.Context) {
	var req sdk.HealthDataRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, sdk.ChatResponse{Message: msgUserRequired})
		return
	}

	s.mu.Lock()
	iv := s.interview(req.UserID)
	if req.Temperature != nil && *req.Temperature >= feverCelsius {
		iv.Evidence = append(iv.Evidence, "fever")
	}
	if req.BloodPressureSystolic != nil && req.BloodPressureDiastolic != nil &&
		(*req.BloodPressureSystolic >= highSystolic || *req.BloodPressureDiastolic >= highDiastolic) {
		iv.Evidence = append(iv.Evidence, "high blood pressure")
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgHealthData})
}

// editProfile handles POST /edit_profile
func (s *Server) editProfile(c *gin.Context) {
	var req sdk.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, sdk.ChatResponse{Message: msgUserRequired})
		return
	}

	if err := session.ValidateAge(req.Age); err != nil {
		c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgUnderage, ErrorMessage: msgUnderageDetail})
		return
	}

	s.mu.Lock()
	iv := s.interview(req.UserID)
	iv.Age = req.Age
	if req.Sex != "" {
		iv.Sex = req.Sex
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, sdk.ChatResponse{Message: msgProfile})
}
