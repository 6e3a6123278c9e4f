package cmd

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/retune31/constants"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/session"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveProcFlags *processorFlags
)

func init() {
	serveProcFlags = addProcessorFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", constants.GetAddr(), "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves retuning sessions over HTTP",
	Long: `Serves a JSON API where each session owns its own tonal space. Sessions
left idle for RETUNE_SESSION_TTL are closed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		newProc, err := serveProcFlags.newProcessorFunc()
		if err != nil {
			return err
		}
		sessions := session.NewManager(newProc, constants.GetSessionTTL())
		defer sessions.Close()

		logrus.WithField("addr", serveAddr).Info("serving")
		return http.ListenAndServe(serveAddr, NewServer(sessions).Handler())
	},
}

// Server exposes a session manager over HTTP.
type Server struct {
	sessions *session.Manager
}

func NewServer(sessions *session.Manager) *Server {
	return &Server{sessions: sessions}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/sessions", s.HandleCreateSession).Methods("POST")
	router.HandleFunc("/sessions/{id}/events", s.HandleEvents).Methods("POST")
	router.HandleFunc("/sessions/{id}/space", s.HandleSpace).Methods("GET")
	router.HandleFunc("/sessions/{id}", s.HandleDeleteSession).Methods("DELETE")

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("could not write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
		status = http.StatusNotFound
	case errors.Is(err, errInternal):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

var errInternal = errors.New("internal error")

func (s *Server) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		logrus.WithError(err).Error("could not create session")
		writeError(w, errInternal)
		return
	}
	writeJSON(w, http.StatusCreated, model.CreateSessionResponse{Id: sess.Id})
}

func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var input model.EventsRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, errors.Wrap(err, "could not decode request body"))
		return
	}
	for i, ev := range input.Events {
		if !ev.Valid() {
			writeError(w, errors.Errorf("event %d is out of range: %v", i, ev))
			return
		}
	}

	decisions, err := sess.Apply(r.Context(), input.Events)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.EventsResponse{Decisions: decisions})
}

func (s *Server) HandleSpace(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	pitches, err := sess.Space(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if pitches == nil {
		pitches = []model.ActivePitch{}
	}
	writeJSON(w, http.StatusOK, model.SpaceResponse{Pitches: pitches})
}

func (s *Server) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
