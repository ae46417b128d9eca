package progress

import (
	"context"
	"errors"
	"net/http"
	"time"

	"peopledetect/internal/logger"
)

// Routes registers the viewer WebSocket at /ws and serves the run's
// annotated images under /images/ so viewers can open saved frames.
func Routes(hub *Hub, imagesDir string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/ws", hub)
	if imagesDir != "" {
		mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir))))
	}
	return mux
}

// Serve runs handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Progress available at ws://%s/ws", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
