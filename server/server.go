// Package server answers interpolation queries for single points over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/larschri/griddata/griddata"
	"github.com/larschri/griddata/raster"
)

type Server struct {
	Raster    *raster.Raster
	Config    griddata.Config
	UseLookup bool
	Listener  net.Listener
}

func parseFloat(req *http.Request, name string, def float64, required bool) (float64, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		if required {
			return 0, fmt.Errorf("missing '%s'", name)
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse '%s': %w", name, err)
	}
	return v, nil
}

func parseMethod(req *http.Request, name string, def griddata.Method) (griddata.Method, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	m, err := griddata.ParseMethod(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse '%s': %w", name, err)
	}
	return m, nil
}

// requestToEngine builds a single point engine from the query parameters
// x, y, res, method, backup and filter.
func (srv *Server) requestToEngine(req *http.Request) (*griddata.Engine, error) {
	if err := srv.Raster.Open(); err != nil {
		return nil, err
	}

	x, err := parseFloat(req, "x", 0, true)
	if err != nil {
		return nil, err
	}

	y, err := parseFloat(req, "y", 0, true)
	if err != nil {
		return nil, err
	}

	res, err := parseFloat(req, "res", srv.Raster.Dx(), false)
	if err != nil {
		return nil, err
	}

	filter, err := parseFloat(req, "filter", 1, false)
	if err != nil {
		return nil, err
	}

	method, err := parseMethod(req, "method", griddata.Average)
	if err != nil {
		return nil, err
	}

	backup, err := parseMethod(req, "backup", griddata.NoMethod)
	if err != nil {
		return nil, err
	}

	e, err := griddata.New(srv.Raster, []float64{x}, []float64{y}, []float64{res})
	if err != nil {
		return nil, err
	}
	e.SetConfig(srv.Config)
	e.SetMethod(method)
	e.SetBackup(backup)
	e.SetFilterSize(filter)
	return e, nil
}

func writeJSONResponse(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		w.WriteHeader(400)
		_, err := w.Write([]byte(err.Error()))
		if err != nil {
			log.Printf("failed to write HTTP 400 response: %v", err)
		}
		return
	}

	bytes, err := json.Marshal(result)
	if err != nil {
		w.WriteHeader(500)
		_, err := w.Write([]byte(err.Error()))
		if err != nil {
			log.Printf("failed to write HTTP 500 response: %v", err)
		}
		return
	}

	w.Header().Add("Content-Type", "application/json")
	_, err = w.Write(bytes)
	if err != nil {
		log.Printf("failed to write HTTP response: %v", err)
	}
}

var singlePoint = griddata.ExecOptions{Workers: 1}

func (srv *Server) handleValue(w http.ResponseWriter, req *http.Request) {
	e, err := srv.requestToEngine(req)
	if err != nil {
		writeJSONResponse(w, nil, err)
		return
	}

	v, err := e.Compute(req.Context(), srv.UseLookup, singlePoint)
	if err != nil {
		writeJSONResponse(w, nil, err)
		return
	}

	a := e.Attribute(0)
	writeJSONResponse(w, map[string]interface{}{
		"x":      a.Point.X,
		"y":      a.Point.Y,
		"method": a.Method.String(),
		"value":  v[0],
	}, nil)
}

func (srv *Server) handleDirectional(w http.ResponseWriter, req *http.Request) {
	e, err := srv.requestToEngine(req)
	if err != nil {
		writeJSONResponse(w, nil, err)
		return
	}

	v, err := e.ComputeDirectional(req.Context(), srv.UseLookup, singlePoint)
	if err != nil {
		writeJSONResponse(w, nil, err)
		return
	}

	a := e.Attribute(0)
	writeJSONResponse(w, map[string]interface{}{
		"x":       a.Point.X,
		"y":       a.Point.Y,
		"sectors": v[0][:],
	}, nil)
}

func (srv *Server) handleInfo(w http.ResponseWriter, req *http.Request) {
	if err := srv.Raster.Open(); err != nil {
		writeJSONResponse(w, nil, err)
		return
	}

	xmin, ymin, xmax, ymax := srv.Raster.Extent()
	writeJSONResponse(w, map[string]interface{}{
		"name":     srv.Raster.Name(),
		"nx":       srv.Raster.Nx(),
		"ny":       srv.Raster.Ny(),
		"dx":       srv.Raster.Dx(),
		"dy":       srv.Raster.Dy(),
		"extent":   []float64{xmin, ymin, xmax, ymax},
		"dataType": srv.Raster.DataType().String(),
		"nodata":   srv.Raster.NoData(),
		"inMemory": srv.Raster.InMemory(),
	}, nil)
}

// Handler returns the routes of the server. Profiling endpoints are served
// from http.DefaultServeMux.
func (srv *Server) Handler() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/value", srv.handleValue)
	m.HandleFunc("/directional", srv.handleDirectional)
	m.HandleFunc("/info", srv.handleInfo)
	m.Handle("/metrics", promhttp.Handler())
	m.Handle("/debug/pprof/", http.DefaultServeMux)
	return m
}

// shutdownWhenDone invokes http.Server.Shutdown when the given context is cancelled.
// This function will block until context cancellation.
func shutdownWhenDone(ctx context.Context, server *http.Server) {
	log.Print("server started")
	<-ctx.Done()

	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Print("terminating server")
	server.Shutdown(c)
}

func (srv *Server) Serve(ctx context.Context) error {
	server := http.Server{
		Handler: srv.Handler(),
	}

	go shutdownWhenDone(ctx, &server)

	err := server.Serve(srv.Listener)
	if err != http.ErrServerClosed {
		return err
	}

	log.Print("server stopped")
	return nil
}
