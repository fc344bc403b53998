// Package http 提供HTTP处理器
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"budgetrec/bundle"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const serviceName = "Budget Recommender API"

// Handlers 持有只读的模型包及其依赖
type Handlers struct {
	bundle *bundle.Bundle
	logger *zap.Logger
	cache  *lru.Cache[string, int]
}

// NewHandlers 创建处理器。cacheSize为0时禁用预测缓存。
func NewHandlers(b *bundle.Bundle, logger *zap.Logger, cacheSize int) (*Handlers, error) {
	h := &Handlers{bundle: b, logger: logger}
	if cacheSize > 0 {
		cache, err := lru.New[string, int](cacheSize)
		if err != nil {
			return nil, err
		}
		h.cache = cache
	}
	return h, nil
}

// Register 注册所有路由
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("POST /predict", h.handlePredict)
}

// handleRoot 服务信息端点
func (h *Handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status":      "ok",
		"message":     serviceName,
		"bundle_path": h.bundle.Path,
	})
}

// handlePredict 处理预测请求
func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	req, err := decodePredictRequest(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := GetRequestID(r.Context())
	h.logger.Info("incoming predict request",
		zap.String("request_id", requestID),
		zap.Any("request", req),
	)

	categoryEnc, priorityEnc, err := h.resolveCodes(req)
	if err != nil {
		h.respondResolveError(w, requestID, err)
		return
	}
	h.logger.Info("resolved categorical codes",
		zap.String("request_id", requestID),
		zap.Int("category_enc", categoryEnc),
		zap.Int("priority_enc", priorityEnc),
	)

	row, err := h.bundle.Row(map[string]float64{
		"income_x":       req.IncomeX,
		"income_y":       req.IncomeY,
		"expense_amount": req.ExpenseAmount,
		"category_enc":   float64(categoryEnc),
		"priority_enc":   float64(priorityEnc),
		"cutoff_rate":    req.CutoffRate,
		"total_expenses": req.TotalExpenses,
		"expense_ratio":  req.ExpenseRatio,
		"risk_flag":      float64(req.RiskFlag),
	})
	if err != nil {
		h.logger.Error("feature row assembly failed",
			zap.String("request_id", requestID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.logger.Info("model input row",
		zap.String("request_id", requestID),
		zap.Strings("columns", h.bundle.FeatureOrder),
		zap.Float64s("row", row),
	)

	pred, err := h.predict(row)
	if err != nil {
		h.logger.Error("model prediction failed",
			zap.String("request_id", requestID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("outgoing predict response",
		zap.String("request_id", requestID),
		zap.Int("recommend_flag", pred),
	)
	respondJSON(w, map[string]int{"recommend_flag": pred})
}

// requestError 客户端输入错误，在边界转换为400响应
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

// resolveCodes 将两种分类输入模式归一为一对编码
func (h *Handlers) resolveCodes(req *PredictRequest) (int, int, error) {
	if h.bundle.HasEncoders() {
		var missing []string
		if req.Category == nil {
			missing = append(missing, "category")
		}
		if req.PriorityFlag == nil {
			missing = append(missing, "priority_flag")
		}
		if len(missing) > 0 {
			return 0, 0, &requestError{
				msg: "Provide " + strings.Join(quoteAll(missing), " and ") + " as strings.",
			}
		}

		categoryEnc, err := h.encodeField("category", *req.Category)
		if err != nil {
			return 0, 0, err
		}
		priorityEnc, err := h.encodeField("priority_flag", *req.PriorityFlag)
		if err != nil {
			return 0, 0, err
		}
		return categoryEnc, priorityEnc, nil
	}

	var missing []string
	if req.CategoryEnc == nil {
		missing = append(missing, "category_enc")
	}
	if req.PriorityEnc == nil {
		missing = append(missing, "priority_enc")
	}
	if len(missing) > 0 {
		return 0, 0, &requestError{
			msg: "Model bundle has no encoders. Provide numeric " +
				strings.Join(quoteAll(missing), " and ") +
				", or re-export a bundle with encoders.",
		}
	}
	return *req.CategoryEnc, *req.PriorityEnc, nil
}

func (h *Handlers) encodeField(field, label string) (int, error) {
	enc, ok := h.bundle.Encoder(field)
	if !ok {
		return 0, errors.New("bundle has no encoder for field " + strconv.Quote(field))
	}
	code, err := enc.Transform(label)
	if err != nil {
		if errors.Is(err, bundle.ErrUnknownLabel) {
			return 0, &requestError{
				msg: "Unknown " + field + " label " + strconv.Quote(label) + ".",
			}
		}
		return 0, err
	}
	return code, nil
}

func (h *Handlers) respondResolveError(w http.ResponseWriter, requestID string, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		h.logger.Warn("predict request rejected",
			zap.String("request_id", requestID), zap.String("reason", reqErr.msg))
		respondError(w, http.StatusBadRequest, reqErr.msg)
		return
	}
	h.logger.Error("categorical encoding failed",
		zap.String("request_id", requestID), zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// predict 查缓存，未命中则调用模型。预测是确定性的，缓存不改变语义。
func (h *Handlers) predict(row []float64) (int, error) {
	key := ""
	if h.cache != nil {
		key = rowKey(row)
		if pred, ok := h.cache.Get(key); ok {
			return pred, nil
		}
	}
	pred, err := h.bundle.Model.Predict(row)
	if err != nil {
		return 0, err
	}
	if h.cache != nil {
		h.cache.Add(key, pred)
	}
	return pred, nil
}

func rowKey(row []float64) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func quoteAll(fields []string) []string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = "'" + f + "'"
	}
	return quoted
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
