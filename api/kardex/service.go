package kardex

import (
	"CampusPagosGo/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type KardexService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewKardexService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &KardexService{config: cfg, pool: pool}
}

func (s *KardexService) Name() string {
	return "kardex"
}

func (s *KardexService) Start() error {
	go StartKardexService(s.pool)
	return nil
}

func (s *KardexService) Stop() error {
	// Implement stop logic if needed
	return nil
}
