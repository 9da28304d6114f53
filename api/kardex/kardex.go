package kardex

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StartKardexService mounts the payment-import routes and blocks on the
// listener. Run it in a goroutine from the service wrapper.
func StartKardexService(pool *pgxpool.Pool) {
	router := mux.NewRouter()

	router.HandleFunc("/kardex/import", UploadKardexPagos(pool)).Methods("POST")
	router.HandleFunc("/kardex/pagos", GetKardexPagos(pool)).Methods("GET")
	router.HandleFunc("/kardex/pagos/recibo", AttachReceipt(pool)).Methods("POST")
	router.HandleFunc("/kardex/promote", ManualPromote(pool)).Methods("POST")
	router.HandleFunc("/kardex/batches", GetImportBatches(pool)).Methods("GET")

	router.HandleFunc("/kardex/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Kardex Service is healthy"))
	}).Methods("GET")

	log.Println("Kardex Service started on :6143")
	err := http.ListenAndServe(":6143", router)
	if err != nil {
		log.Fatalf("Kardex Service failed: %v", err)
	}
}
