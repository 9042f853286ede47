package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/melodist/melodist/chord"
	"github.com/melodist/melodist/compose"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/scale"
	"github.com/melodist/melodist/settings"
)

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "listen port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the generation API over HTTP",
	Long:  `Serves the generation API over HTTP`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		addr := fmt.Sprintf(":%d", servePort)
		log.Info("listening", zap.String("addr", addr))
		return http.ListenAndServe(addr, NewHandler(log))
	},
}

// NewHandler builds the API handler: POST /generate composes a piece, GET
// /keys and GET /chords enumerate the vocabulary. CORS is open so browser
// front ends can talk to a local server directly.
func NewHandler(log *zap.Logger) http.Handler {
	// settings writes ride on request handling, so coalesce bursts
	debounced := debounce.New(2 * time.Second)

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/generate", handleGenerate(log, debounced)).Methods("POST")
	router.HandleFunc("/keys", handleKeys).Methods("GET")
	router.HandleFunc("/chords", handleChords).Methods("GET")
	return cors.Default().Handler(router)
}

func handleGenerate(log *zap.Logger, debounced func(func())) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params model.GenerateParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body: "+err.Error())
			return
		}

		res, err := compose.Compose(log, params)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		data, err := res.Timeline.Bytes()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		debounced(func() { settings.FromParams(params).Save(log) })

		if r.URL.Query().Get("format") == "midi" {
			w.Header().Set("Content-Type", "audio/midi")
			w.Write(data)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.GenerateResponse{
			Melody: res.Melody,
			Tracks: len(res.Timeline.Tracks),
			Seed:   res.Seed,
			Midi:   data,
		})
	}
}

func handleKeys(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scale.KeyNames())
}

func handleChords(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chord.AllNames())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: detail})
}
