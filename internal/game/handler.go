package game

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/SlpAus/lifesim-backend/internal/character"
	"github.com/gin-gonic/gin"
)

// Handler 把游戏服务暴露为HTTP接口
type Handler struct {
	service *Service
}

// NewHandler 创建游戏接口处理器
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// DayResponse 是历史记录中的一天
type DayResponse struct {
	NumberOfDay int             `json:"number_of_day"`
	Stats       character.Stats `json:"stats"`
}

// StartGame 创建新游戏，返回初始状态和开场事件
func (h *Handler) StartGame(c *gin.Context) {
	var req StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体: " + err.Error()})
		return
	}

	result, err := h.service.StartGame(c.Request.Context(), req.Profile())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"game_state": result.State,
		"event":      result.Event,
	})
}

// MakeChoice 把客户端提交的影响应用到当前一天，返回新状态和下一个事件。
//
// 信任边界：impact 按客户端提交的原样接受，服务器不会核对它是否来自之前下发的事件选项。
// 这里只保证结构严格和数值被限制在属性范围内，不是防作弊手段。
func (h *Handler) MakeChoice(c *gin.Context) {
	gameID, err := parseGameID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	req, err := decodeChoice(c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.MakeChoice(c.Request.Context(), gameID, *req.Impact, req.Day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game_state": result.State,
		"event":      result.Event,
	})
}

// GetState 返回游戏当前状态
func (h *Handler) GetState(c *gin.Context) {
	gameID, err := parseGameID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	state, err := h.service.GetState(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_state": state})
}

// GetHistory 返回游戏的全部历史
func (h *Handler) GetHistory(c *gin.Context) {
	gameID, err := parseGameID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	days, err := h.service.GetHistory(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]DayResponse, 0, len(days))
	for _, d := range days {
		responses = append(responses, DayResponse{NumberOfDay: d.NumberOfDay, Stats: d.Stats})
	}
	c.JSON(http.StatusOK, gin.H{"days": responses})
}

// GetEvent 为当前一天生成一个事件
func (h *Handler) GetEvent(c *gin.Context) {
	gameID, err := parseGameID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ev, err := h.service.NextEvent(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": ev})
}

// DeleteGame 删除游戏及其历史
func (h *Handler) DeleteGame(c *gin.Context) {
	gameID, err := parseGameID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.DeleteGame(c.Request.Context(), gameID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseGameID(c *gin.Context) (uint, error) {
	raw := c.Param("game_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: 无效的游戏ID %q", ErrValidation, raw)
	}
	return uint(id), nil
}

// respondError 把领域错误映射为HTTP状态码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDayConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStorageCorruption):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "游戏数据损坏"})
	default:
		fmt.Printf("错误: %s %s 处理失败: %v\n", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
	}
}
