package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, history, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidTimestamp    = "INVALID_TIMESTAMP"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeCalculationNotFound = "CALCULATION_NOT_FOUND"
	ErrCodeHistoryDisabled     = "HISTORY_DISABLED"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewInvalidTimestampError は暦として不正な日時のエラーを生成する。
// fieldsには不正なフィールドの説明を渡す。
func NewInvalidTimestampError(timestamp string, fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTimestamp,
		Message:  fmt.Sprintf("不正な日時です: %s (%s)", timestamp, strings.Join(fields, ", ")),
		Category: "validation",
		Action:   "年は1以上、月は1〜12、日はその月の日数以内、時は0〜23、分と秒は0〜59で指定してください。",
	}
}

// NewInvalidRequestError はリクエスト形式の不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエストボディのJSON形式とパラメータを確認してください。",
	}
}

// NewCalculationNotFoundError は計算履歴が見つからない場合のエラーを生成する。
func NewCalculationNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeCalculationNotFound,
		Message:  fmt.Sprintf("指定された計算履歴が見つかりません: %s", id),
		Category: "history",
		Action:   "計算IDを確認してください。",
	}
}

// NewHistoryDisabledError は履歴の永続化が無効な場合のエラーを生成する。
func NewHistoryDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeHistoryDisabled,
		Message:  "計算履歴は無効化されています。",
		Category: "history",
		Action:   "DATABASE_URLを設定してサーバーを再起動してください。",
	}
}

// NewRateLimitedError はレート制限超過のエラーを生成する。
func NewRateLimitedError(retryAfterSec int) *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   fmt.Sprintf("%d秒ほど待ってから再度お試しください。", retryAfterSec),
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
