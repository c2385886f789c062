// Command seed creates a merchant and a cardholder so a fresh deployment can
// take test transactions.
package main

import (
	"context"
	"log"
	"os"

	"cardguard/internal/config"
	"cardguard/internal/logging"
	"cardguard/internal/models"
	"cardguard/internal/repositories"
	"cardguard/internal/utils"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zapLogger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	db, err := repositories.Open(cfg.DB)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer repositories.Close(db) //nolint:errcheck

	ctx := context.Background()
	merchants := repositories.NewMerchantRepository(db)
	cardholders := repositories.NewCardholderRepository(db)
	ruleRepo := repositories.NewRuleRepository(db)

	apiKey := os.Getenv("SEED_MERCHANT_API_KEY")
	if apiKey == "" {
		if apiKey, err = repositories.GenerateMerchantAPIKey(); err != nil {
			zapLogger.Fatal("failed to generate api key", zap.Error(err))
		}
	}

	if _, err := merchants.GetByAPIKey(ctx, apiKey); err == nil {
		zapLogger.Info("merchant already exists", logging.MaskedKey("merchant", apiKey))
	} else {
		if err := merchants.Create(ctx, &models.Merchant{APIKey: apiKey}); err != nil {
			zapLogger.Fatal("failed to create merchant", zap.Error(err))
		}
		// The generated key is printed once so the operator can record it.
		zapLogger.Info("merchant created", zap.String("api_key", apiKey))

		if config.GetBoolEnv("SEED_STARTER_RULES", true) {
			for i := range starterRules {
				rule := starterRules[i]
				rule.MerchantAPIKey = apiKey
				if err := ruleRepo.Create(ctx, &rule); err != nil {
					zapLogger.Fatal("failed to create rule", zap.Error(err))
				}
			}
			zapLogger.Info("starter rules created", zap.Int("count", len(starterRules)))
		}
	}

	pan := os.Getenv("SEED_CARD_NUMBER")
	if pan == "" {
		zapLogger.Info("SEED_CARD_NUMBER not set, skipping cardholder")
		return
	}
	if !utils.ValidCardNumber(pan) {
		zapLogger.Fatal("SEED_CARD_NUMBER failed the Luhn check")
	}
	cchash := utils.HashCard(pan, os.Getenv("SEED_CARD_EXPIRY"), os.Getenv("SEED_CARD_CVV"))

	if _, err := cardholders.GetByHash(ctx, cchash); err == nil {
		zapLogger.Info("cardholder already exists", logging.MaskedKey("cchash", cchash))
		return
	}

	cardholder := &models.Cardholder{
		CCHash:       cchash,
		Email:        optional("SEED_CARDHOLDER_EMAIL"),
		Phone:        optional("SEED_CARDHOLDER_PHONE"),
		HomeLocation: optional("SEED_CARDHOLDER_HOME"),
	}
	if err := cardholders.Create(ctx, cardholder); err != nil {
		zapLogger.Fatal("failed to create cardholder", zap.Error(err))
	}
	zapLogger.Info("cardholder created",
		zap.String("cchash", cchash),
		zap.Strings("factors", cardholder.EnabledFactors()),
	)
}

var starterRules = []models.Rule{
	{Priority: 30, Amount: float64Ptr(5000), Condition: models.ConditionGreater, SuccessStatus: models.StatusDenied},
	{Priority: 20, Location: stringPtr(models.HomeLocation), Condition: models.ConditionNot, SuccessStatus: models.StatusChallengeRequired},
	{Priority: 10, Amount: float64Ptr(100), Condition: models.ConditionLessThan, SuccessStatus: models.StatusApproved},
}

func optional(key string) *string {
	if v := os.Getenv(key); v != "" {
		return &v
	}
	return nil
}

func float64Ptr(f float64) *float64 { return &f }
func stringPtr(s string) *string    { return &s }
