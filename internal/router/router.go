package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	_ "pet-census/docs"
	mem "pet-census/internal/adapters/storage/memory"
	pg "pet-census/internal/adapters/storage/postgres"
	"pet-census/internal/domain/absences"
	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/audit"
	"pet-census/internal/domain/cities"
	"pet-census/internal/domain/forms"
	"pet-census/internal/domain/litters"
	"pet-census/internal/domain/responses"
	"pet-census/internal/domain/users"
	"pet-census/internal/middleware"
	"pet-census/internal/platform/logger"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  auth.TokenIssuer  // puede ser nil (login devuelve token vacío)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		userRepo     users.Repository
		cityRepo     cities.Repository
		formRepo     forms.Repository
		animalRepo   animals.Repository
		litterRepo   litters.Repository
		absenceRepo  absences.Repository
		responseRepo responses.Repository
		auditRepo    audit.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		userRepo = pg.NewUsersRepo(db)
		cityRepo = pg.NewCitiesRepo(db)
		formRepo = pg.NewFormsRepo(db)
		animalRepo = pg.NewAnimalsRepo(db)
		litterRepo = pg.NewLittersRepo(db)
		absenceRepo = pg.NewAbsencesRepo(db)
		responseRepo = pg.NewResponsesRepo(db)
		auditRepo = pg.NewAuditRepo(db)
	} else {
		animalRepo = mem.NewAnimalRepo()
		litterRepo = mem.NewLitterRepo()
		absenceRepo = mem.NewAbsenceRepo()
		responseRepo = mem.NewResponseRepo()
		userRepo = mem.NewUserRepo()
		cityRepo = mem.NewCityRepo()
		// el repo de formularios cascadea el delete sobre los hijos
		formRepo = mem.NewFormRepo(animalRepo, litterRepo, absenceRepo, responseRepo)
		auditRepo = mem.NewAuditRepo()
	}

	// Services por módulo
	auditSvc := audit.NewService(auditRepo, log)
	usersSvc := users.NewService(userRepo, opts.TokenIssuer)
	citiesSvc := cities.NewService(cityRepo, auditSvc)
	responsesSvc := responses.NewService(responseRepo, citiesSvc, auditSvc)
	formsSvc := forms.NewService(formRepo, &responseSourceAdapter{svc: responsesSvc}, auditSvc)
	animalsSvc := animals.NewService(animalRepo, auditSvc)
	littersSvc := litters.NewService(litterRepo, auditSvc)
	absencesSvc := absences.NewService(absenceRepo, auditSvc)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	cities.RegisterRoutes(r, citiesSvc)
	forms.RegisterRoutes(r, formsSvc, citiesSvc)
	animals.RegisterRoutes(r, animalsSvc, formsSvc)
	litters.RegisterRoutes(r, littersSvc, formsSvc)
	absences.RegisterRoutes(r, absencesSvc, formsSvc)
	responses.RegisterRoutes(r, responsesSvc, formsSvc)
	audit.RegisterRoutes(r, auditSvc)

	// Read model completo para exportación/consulta
	r.Get("/forms/{formID}/full", fullFormHandler(formsSvc, animalsSvc, littersSvc, absencesSvc, responsesSvc))

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// responseSourceAdapter acopla responses.Service al contrato que pide el
// validador de completitud sin que forms importe responses.
type responseSourceAdapter struct {
	svc *responses.Service
}

func (a *responseSourceAdapter) ListRequiredUnanswered(ctx context.Context, formID, cityID string) ([]forms.UnansweredQuestion, error) {
	missing, err := a.svc.ListRequiredUnanswered(ctx, formID, cityID)
	if err != nil {
		return nil, err
	}
	out := make([]forms.UnansweredQuestion, 0, len(missing))
	for _, q := range missing {
		out = append(out, forms.UnansweredQuestion{ID: q.ID, Text: q.Text})
	}
	return out, nil
}
