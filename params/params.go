package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	HealthCheckServerAddr = ":3001" // health check server address

	UsernameMinLength         = 3
	UsernameMaxLength         = 50
	PasswordMinLength         = 6
	TopicTitleMinLength       = 5
	TopicTitleMaxLength       = 200
	TopicDescriptionMaxLength = 1000
	MessageTextMaxLength      = 5000

	TopicListCacheKey = "topics:all"
	TopicListCacheTTL = 30 * time.Second // hot topic listing cache
)
