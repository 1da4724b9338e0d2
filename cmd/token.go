package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/anoixa/comic-tracker/config"
	"github.com/anoixa/comic-tracker/internal/auth"
	"github.com/anoixa/comic-tracker/utils"
	cryptopackage "github.com/anoixa/comic-tracker/utils/crypto"
)

// tokenCmd 使用本地 jwt_secret 签发访问令牌
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a JWT access token for the API",
	Long: `Mint a bearer token signed with the configured jwt_secret.

Example:
  comic-tracker token --subject fetcher --ttl 720h`,
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if err := runToken(subject, ttl); err != nil {
			log.Fatalf("Token failed: %v", err)
		}
	},
}

// hashKeyCmd 生成 API Key 及其 argon2id 哈希
var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [key]",
	Short: "Hash an API key for api_key_hash",
	Long: `Print the argon2id hash of an API key. Without an argument a new random key is generated.

Example:
  comic-tracker hash-key
  comic-tracker hash-key ct_existing_key`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var key string
		if len(args) == 1 {
			key = args[0]
		}
		if err := runHashKey(key); err != nil {
			log.Fatalf("Hash failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd, hashKeyCmd)
	tokenCmd.Flags().StringP("subject", "s", "operator", "Token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default: jwt_expires_in)")
}

func runToken(subject string, ttl time.Duration) error {
	config.InitConfig()
	cfg := config.Get()
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is not configured")
	}

	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return err
	}
	token, expiresAt, err := jwtService.GenerateAccessToken(subject, ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	log.Printf("Token for %q expires at %s", subject, expiresAt.Format(time.RFC3339))
	return nil
}

func runHashKey(key string) error {
	generated := key == ""
	if generated {
		var err error
		if key, err = utils.GenerateAPIKey(); err != nil {
			return err
		}
	}

	hash, err := cryptopackage.HashAPIKey(key)
	if err != nil {
		return err
	}

	if generated {
		fmt.Printf("API key:      %s\n", key)
	}
	// 单引号避免 .env 解析时展开 $
	fmt.Printf("api_key_hash='%s'\n", hash)
	return nil
}
