package main

import (
	"os"
	"strconv"
	"time"

	"github.com/brameldering/bram-pos/internal/config"
	"github.com/brameldering/bram-pos/internal/domain/model"
	"github.com/brameldering/bram-pos/internal/handler"
	"github.com/brameldering/bram-pos/internal/infra/db"
	infraRepo "github.com/brameldering/bram-pos/internal/infra/repository"
	"github.com/brameldering/bram-pos/internal/logger"
	"github.com/brameldering/bram-pos/internal/pricing"
	"github.com/brameldering/bram-pos/internal/server"
	"github.com/brameldering/bram-pos/internal/usecase"
	auth "github.com/brameldering/bram-pos/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// zapのFatalはos.Exitでdeferを飛ばすので、明示的にSyncしてから落とす
func fatal(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	_ = log.Sync()
	os.Exit(1)
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		fatal(log, "db connect failed", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.SequenceCounter{},
		&model.AuditLog{},
	); err != nil {
		fatal(log, "auto migrate failed", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//価格ルール
	rules := pricing.Rules{
		FlatShippingFee:       cfg.ShippingFlatFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		TaxRate:               cfg.TaxRate,
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	profileUC := auth.NewProfileUsecase(userRepo)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, rules)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, profileUC)
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(orderUC)
	adminOrderH := handler.NewAdminOrderHandler(adminOrderUC)
	adminProductH := handler.NewAdminProductHandler(productUC)
	adminAuditH := handler.NewAdminAuditHandler(auditUC)

	//ルート登録
	e := server.New(cfg, log)
	authH.RegisterRoutes(e, cfg, userRepo)
	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e, cfg, userRepo)
	orderH.RegisterRoutes(e, cfg, userRepo)
	adminOrderH.RegisterRoutes(e, cfg, userRepo)
	adminProductH.RegisterRoutes(e, cfg, userRepo)
	adminAuditH.RegisterRoutes(e, cfg, userRepo)

	//Server起動
	addr := ":8080"
	if cfg.Port != "" {
		if cfg.Port[0] != ':' {
			addr = ":" + cfg.Port
		} else {
			addr = cfg.Port
		}
	}

	log.Info("server started", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		fatal(log, "server stopped", err)
	}
}
