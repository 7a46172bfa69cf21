package models

// AskRequest 问答请求
type AskRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// AskResponse 问答响应
type AskResponse struct {
	Answer     string  `json:"answer"`
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Provenance string  `json:"provenance,omitempty"`
}

// ClassifyRequest 意图识别请求（调试/管理接口）
type ClassifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// RetrainRequest 重新训练请求
type RetrainRequest struct {
	TrainingDataPath string `json:"trainingDataPath,omitempty"`
}

// RetrainResponse 重新训练响应
type RetrainResponse struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	LabelSet   []string `json:"labelSet,omitempty"`
	VocabSize  int      `json:"vocabSize,omitempty"`
	NumExample int      `json:"numExamples,omitempty"`
}

// StatusResponse 系统状态响应
type StatusResponse struct {
	ServiceRunning   bool   `json:"serviceRunning"`
	RedisConnected   bool   `json:"redisConnected"`
	ModelAvailable   bool   `json:"modelAvailable"`
	OnlineUserCount  int    `json:"onlineUserCount"`
	ActiveWSConns    int    `json:"activeWebsocketConnections"`
	IndexedDocuments int    `json:"indexedDocuments"`
	Version          string `json:"version"`
}
