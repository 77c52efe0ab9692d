package middleware

import "net/http"

// jsonAPIContentSecurityPolicy はJSONのみを返すAPI向けのCSP。
// スクリプト・フレーム・外部リソースの読み込みをすべて禁止する。
const jsonAPIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// NewSecurityHeadersMiddleware はJSON APIのレスポンスにセキュリティヘッダーを付与するミドルウェアを返す。
// 計算結果や履歴は共有キャッシュに残さないため、Cache-Control: no-storeも付ける。
// ハンドラーがすでにCache-Controlを設定している場合は上書きしない。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", jsonAPIContentSecurityPolicy)
			h.Set("Referrer-Policy", "no-referrer")
			if h.Get("Cache-Control") == "" {
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
