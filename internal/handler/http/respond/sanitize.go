package respond

import "regexp"

// Applied in order: the Anthropic pattern is more specific than the OpenAI one.
var (
	// API キーパターン
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	// データベースパスワードパターン（DSN内）
	dsnPasswordPattern  = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
	basicAuthPattern    = regexp.MustCompile(`(?i)(authorization:\s*basic\s+)\S+`)
	webhookTokenPattern = regexp.MustCompile(`(hooks\.slack\.com/services/|discord\.com/api/webhooks/)\S+`)
)

// SanitizeError returns err's message with API keys, DSN passwords,
// basic-auth credentials and webhook tokens masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	// APIキーのマスク（順序重要: より具体的なパターンから適用）
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	// DBパスワードのマスク
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	// Basic認証とWebhookトークンのマスク
	msg = basicAuthPattern.ReplaceAllString(msg, "${1}****")
	msg = webhookTokenPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
