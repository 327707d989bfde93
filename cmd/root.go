package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fintari/gramthread/chat"
	globalConfig "github.com/fintari/gramthread/config"
	domainThread "github.com/fintari/gramthread/domains/thread"
	"github.com/fintari/gramthread/entitycache"
	infraDirectory "github.com/fintari/gramthread/infrastructure/directory"
	"github.com/fintari/gramthread/infrastructure/valkey"
	"github.com/fintari/gramthread/pkg/eventbus"
	"github.com/fintari/gramthread/pkg/utils"
	"github.com/fintari/gramthread/usecase"
)

var (
	// Shared wiring built by initApp and consumed by subcommands.
	vkClient      *valkey.Client
	userRegistry  *entitycache.Registry
	bus           *eventbus.Bus
	inbox         *chat.Inbox
	threadUsecase domainThread.IThreadUsecase
)

var rootCmd = &cobra.Command{
	Short: "Direct-message thread gateway",
	Long: `gramthread keeps an in-memory cache of direct-message threads on top of
an externally supplied directory client and exposes the thread operations
(send, typing, approve, seen, delete) over HTTP and WebSocket.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig loads configuration from environment variables
func initEnvConfig() {
	if envPort := viper.GetString("app_port"); envPort != "" {
		globalConfig.AppPort = envPort
	}
	if envDebug := viper.GetBool("app_debug"); envDebug {
		globalConfig.AppDebug = envDebug
	}
	envBasicAuth := viper.GetString("app_basic_auth")
	if envBasicAuth == "" {
		envBasicAuth = os.Getenv("APP_BASIC_AUTH")
	}
	if envBasicAuth != "" {
		globalConfig.AppBasicAuthCredential = strings.Split(envBasicAuth, ",")
	}
	if envBasePath := viper.GetString("app_base_path"); envBasePath != "" {
		globalConfig.AppBasePath = envBasePath
	}
	if envTrustedProxies := viper.GetString("app_trusted_proxies"); envTrustedProxies != "" {
		globalConfig.AppTrustedProxies = strings.Split(envTrustedProxies, ",")
	}

	// Thread behavior settings
	if ms := viper.GetInt("typing_duration_ms"); ms > 0 {
		globalConfig.TypingDuration = time.Duration(ms) * time.Millisecond
	}
	if ms := viper.GetInt("typing_keepalive_ms"); ms > 0 {
		globalConfig.TypingKeepAlive = time.Duration(ms) * time.Millisecond
	}
	if ms := viper.GetInt("send_resolve_timeout_ms"); ms > 0 {
		globalConfig.SendResolveTimeout = time.Duration(ms) * time.Millisecond
	}
	if v := viper.GetInt64("attachment_max_photo_size"); v > 0 {
		globalConfig.AttachmentMaxPhotoSize = v
	}
	if v := viper.GetInt64("attachment_max_voice_size"); v > 0 {
		globalConfig.AttachmentMaxVoiceSize = v
	}

	// Valkey settings
	if viper.IsSet("valkey_enabled") {
		globalConfig.ValkeyEnabled = viper.GetBool("valkey_enabled")
	}
	if v := viper.GetString("valkey_address"); v != "" {
		globalConfig.ValkeyAddress = v
	}
	if v := viper.GetString("valkey_password"); v != "" {
		globalConfig.ValkeyPassword = v
	}
	if viper.IsSet("valkey_db") {
		globalConfig.ValkeyDB = viper.GetInt("valkey_db")
	}
	if v := viper.GetString("valkey_key_prefix"); v != "" {
		globalConfig.ValkeyKeyPrefix = v
	}
	if v := viper.GetString("server_id"); v != "" {
		globalConfig.ServerID = v
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppPort,
		"port", "p",
		globalConfig.AppPort,
		"change port number with --port <number> | example: --port=8080",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.AppDebug,
		"debug", "d",
		globalConfig.AppDebug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&globalConfig.AppBasicAuthCredential,
		"basic-auth", "b",
		globalConfig.AppBasicAuthCredential,
		"basic auth credential | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppBasePath,
		"base-path", "",
		globalConfig.AppBasePath,
		`base path for subpath deployment --base-path <string> | example: --base-path="/gramthread"`,
	)

	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.ValkeyEnabled,
		"valkey", "",
		globalConfig.ValkeyEnabled,
		"mirror the user cache and fan out websocket events through valkey --valkey <true/false>",
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.ValkeyAddress,
		"valkey-address", "",
		globalConfig.ValkeyAddress,
		`valkey address --valkey-address <host:port> | example: --valkey-address="localhost:6379"`,
	)
}

func initApp() {
	if globalConfig.AppDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if globalConfig.ValkeyEnabled {
		client, err := valkey.NewClient(valkey.Config{
			Address:   globalConfig.ValkeyAddress,
			Password:  globalConfig.ValkeyPassword,
			DB:        globalConfig.ValkeyDB,
			KeyPrefix: globalConfig.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Warn("[APP] Valkey unavailable, continuing without mirror")
		} else {
			vkClient = client
		}
	}

	userRegistry = entitycache.NewRegistry()
	if vkClient != nil {
		userRegistry.WithMirror(entitycache.NewValkeyMirror(vkClient))
	}

	bus = eventbus.New()

	// The directory client is supplied by the embedding host in production.
	// The standalone binary wires the loopback client so the gateway can be
	// driven end to end during development.
	client := infraDirectory.NewLoopback("self", 150*time.Millisecond)

	inbox = chat.NewInbox(client, userRegistry, bus)
	threadUsecase = usecase.NewThreadService(inbox)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of shared infrastructure.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if vkClient != nil {
		vkClient.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
