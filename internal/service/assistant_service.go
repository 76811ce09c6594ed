package service

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"chainedu_backend/internal/config"
	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
)

type AssistantService struct {
	config        config.AIConfig
	AssistantRepo *repository.AssistantRepository
	ModuleRepo    *repository.ModuleRepository
}

func NewAssistantService(cfg config.AIConfig, assistantRepo *repository.AssistantRepository, moduleRepo *repository.ModuleRepository) *AssistantService {
	return &AssistantService{config: cfg, AssistantRepo: assistantRepo, ModuleRepo: moduleRepo}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"` // 流式响应
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "你是一个区块链技术课程的 AI 助教，擅长讲解分布式账本、共识机制、" +
	"智能合约和密码学基础。回答要循序渐进，优先结合课程内容举例。" +
	"严禁回答与区块链学习无关的政治、色情、暴力话题，超出范围时礼貌拒绝并引导回课程。"

func (s *AssistantService) CreateSession(userID uint, title string) (*model.AssistantSession, error) {
	if title == "" {
		title = "新对话"
	}
	session := &model.AssistantSession{
		UserID: userID,
		Title:  title,
	}
	if err := s.AssistantRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *AssistantService) ListSessions(userID uint) ([]model.AssistantSession, error) {
	return s.AssistantRepo.ListSessions(userID)
}

func (s *AssistantService) GetMessages(sessionID string, userID uint) ([]model.AssistantMessage, error) {
	if _, err := s.AssistantRepo.FindSession(sessionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return s.AssistantRepo.ListMessages(sessionID)
}

func (s *AssistantService) DeleteSession(sessionID string, userID uint) error {
	if _, err := s.AssistantRepo.FindSession(sessionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSessionNotFound
		}
		return err
	}
	return s.AssistantRepo.DeleteSession(sessionID, userID)
}

// ChatStream 向上游模型发起流式补全，返回增量内容通道。
// lessonID 非空时把对应课时内容注入上下文。
// 会话历史持久化由调用方（controller）在流结束后处理。
func (s *AssistantService) ChatStream(sessionID string, userID uint, prompt string, lessonID *uint) (<-chan string, <-chan error, error) {
	if _, err := s.AssistantRepo.FindSession(sessionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrSessionNotFound
		}
		return nil, nil, err
	}

	history, err := s.AssistantRepo.ListMessages(sessionID)
	if err != nil {
		return nil, nil, err
	}

	messages := []AIChatMessage{{Role: "system", Content: systemPrompt}}
	if lessonID != nil {
		if lesson, err := s.ModuleRepo.FindLessonByID(*lessonID); err == nil && lesson.IsActive {
			messages = append(messages, AIChatMessage{
				Role:    "system",
				Content: "学员正在学习课时「" + lesson.Title + "」，课时内容如下，回答时优先结合：\n\n" + lesson.Content,
			})
		}
	}
	for _, h := range history {
		messages = append(messages, AIChatMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	if err := s.AssistantRepo.CreateMessage(&model.AssistantMessage{
		SessionID: sessionID,
		Role:      "user",
		Content:   prompt,
	}); err != nil {
		return nil, nil, err
	}

	reqBody := map[string]interface{}{
		"model":    s.config.Model,
		"messages": messages,
		"stream":   true,
	}
	jsonData, _ := json.Marshal(reqBody)

	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			errChan <- err
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			errChan <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errChan <- fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errChan <- err
				}
				break
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var streamResp ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				continue
			}
			if len(streamResp.Choices) > 0 {
				content := streamResp.Choices[0].Delta.Content
				if content != "" {
					out <- content
				}
			}
		}
	}()

	return out, errChan, nil
}

// SaveAssistantReply 流结束后落库助手回复
func (s *AssistantService) SaveAssistantReply(sessionID, content string) error {
	if content == "" {
		return nil
	}
	return s.AssistantRepo.CreateMessage(&model.AssistantMessage{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   content,
	})
}
