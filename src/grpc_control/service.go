package grpc_control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"stock-dashboard/src/dashboard"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// recentInStatus is how many refresh results GetStatus reports.
const recentInStatus = 5

// SourceRegistry is the part of the multi-source manager the control plane
// drives.
type SourceRegistry interface {
	Statuses() []models.MSourceStatus
	SetEnabled(name string, enabled bool) error
	GetSource(name string) (interfaces.IQuoteSource, error)
	RemoveSource(name string) error
}

// ControlService implements DashboardControlServer
type ControlService struct {
	Controller *dashboard.Controller
	Sources    SourceRegistry
	Logger     *logger.Logger
	Health     *health.Server
}

// NewControlService creates a new instance of ControlService. sources may be
// nil when no provider is configured.
func NewControlService(ctl *dashboard.Controller, sources SourceRegistry, log *logger.Logger) *ControlService {
	if log == nil {
		log = logger.NewLogger(nil, "ControlService")
	}
	s := &ControlService{
		Controller: ctl,
		Sources:    sources,
		Logger:     log,
		Health:     health.NewServer(),
	}
	s.setHealth(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Register attaches the control and health services to s.
func (s *ControlService) Register(server *grpc.Server) {
	RegisterDashboardControlServer(server, s)
	healthpb.RegisterHealthServer(server, s.Health)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Serve runs a gRPC server on lis until ctx is cancelled.
func (s *ControlService) Serve(ctx context.Context, lis net.Listener) error {
	server := grpc.NewServer()
	s.Register(server)
	go s.WatchHealth(ctx)

	go func() {
		<-ctx.Done()
		s.Health.Shutdown()
		server.GracefulStop()
	}()

	s.Logger.Info("Starting gRPC Control Server on %s", lis.Addr())
	if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// WatchHealth flips the health status to SERVING once the store holds a
// snapshot. It returns once serving or when ctx is done.
func (s *ControlService) WatchHealth(ctx context.Context) {
	changes, unsubscribe := s.Controller.Store.Subscribe()
	defer unsubscribe()

	if s.markServing() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok || s.markServing() {
				return
			}
		}
	}
}

func (s *ControlService) markServing() bool {
	if s.Controller.Store.Snapshot() == nil {
		return false
	}
	s.setHealth(healthpb.HealthCheckResponse_SERVING)
	return true
}

func (s *ControlService) setHealth(st healthpb.HealthCheckResponse_ServingStatus) {
	s.Health.SetServingStatus("", st)
	s.Health.SetServingStatus(ServiceName, st)
}

// -----------------------------------------------------------------------------
// RPCs
// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	state := s.Controller.Store.State()

	out := map[string]interface{}{
		"snapshot_id":  uint64(0),
		"source":       "",
		"symbols":      0,
		"last_refresh": timestamp(state.LastRefresh),
		"selected":     state.Selected,
		"watchlist":    stringList(state.Watchlist),
		"theme":        state.Theme,
		"timeframe":    state.Timeframe,
	}
	if snap := state.Snapshot; snap != nil {
		out["snapshot_id"] = snap.ID
		out["source"] = snap.Source
		out["symbols"] = snap.Len()
	}

	recent := s.Controller.Recent(recentInStatus)
	refreshes := make([]interface{}, 0, len(recent))
	for _, r := range recent {
		refreshes = append(refreshes, refreshFields(r))
	}
	out["recent_refreshes"] = refreshes
	out["sources"] = s.sourceList()

	return toStruct(out)
}

// -----------------------------------------------------------------------------

func (s *ControlService) Refresh(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	result := s.Controller.Refresh(ctx)
	s.Logger.Info("gRPC: Refresh %d finished (installed=%t)", result.ID, result.Installed())
	return toStruct(refreshFields(result))
}

// -----------------------------------------------------------------------------

func (s *ControlService) Select(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ticker := stringField(req, "ticker")
	if ticker == "" {
		return nil, status.Error(codes.InvalidArgument, "ticker is required")
	}

	detail, err := s.Controller.SelectSymbol(ticker)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return toStruct(map[string]interface{}{
		"ticker": detail.Ticker,
		"name":   detail.Name,
		"price":  detail.Price,
		"volume": detail.Volume,
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) ToggleWatchlist(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ticker := stringField(req, "ticker")
	watched, err := s.Controller.ToggleFavorite(ticker)
	if err != nil {
		var ve *helpers.ValidationError
		if errors.As(err, &ve) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		// Saving failed but the in-memory list already changed
		s.Logger.Error("gRPC: watchlist not persisted: %v", err)
	}
	return toStruct(map[string]interface{}{
		"ticker":    ticker,
		"watched":   watched,
		"watchlist": stringList(s.Controller.Store.Watchlist()),
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListSources(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]interface{}{"sources": s.sourceList()})
}

// -----------------------------------------------------------------------------

func (s *ControlService) SetSourceEnabled(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req, "name")
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if s.Sources == nil {
		return nil, status.Error(codes.FailedPrecondition, "no sources configured")
	}

	enabled := req.GetFields()["enabled"].GetBoolValue()
	if err := s.Sources.SetEnabled(name, enabled); err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	s.Logger.Info("gRPC: source %s enabled=%t", name, enabled)
	return toStruct(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("source %s enabled=%t", name, enabled),
	})
}

// RemoveSource drops a provider for the rest of the process lifetime. With no
// provider left, refreshes fall back to synthetic data.
func (s *ControlService) RemoveSource(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req, "name")
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if s.Sources == nil {
		return nil, status.Error(codes.FailedPrecondition, "no sources configured")
	}
	if _, err := s.Sources.GetSource(name); err != nil {
		return nil, status.Errorf(codes.NotFound, "source %s not found", name)
	}

	if err := s.Sources.RemoveSource(name); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	s.Logger.Info("gRPC: removed source %s", name)
	return toStruct(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Removed source %s", name),
		"sources": s.sourceList(),
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *ControlService) sourceList() []interface{} {
	if s.Sources == nil {
		return []interface{}{}
	}
	statuses := s.Sources.Statuses()
	list := make([]interface{}, 0, len(statuses))
	for _, st := range statuses {
		list = append(list, map[string]interface{}{
			"name":         st.Name,
			"type":         st.Type,
			"enabled":      st.Enabled,
			"last_attempt": timestamp(st.LastAttempt),
			"last_success": timestamp(st.LastSuccess),
			"last_quotes":  st.LastQuotes,
			"last_reason":  st.LastReason,
			"failures":     st.Failures,
		})
	}
	return list
}

func refreshFields(r models.MRefreshResult) map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID,
		"trigger":     r.Trigger,
		"source":      r.Source,
		"symbols":     r.Symbols,
		"fallback":    r.Fallback,
		"reason":      r.Reason,
		"stale":       r.Stale,
		"installed":   r.Installed(),
		"error":       r.Error,
		"started_at":  timestamp(r.StartedAt),
		"duration_ms": r.Duration.Milliseconds(),
	}
}

// timestamp renders t the way protobuf's JSON mapping renders a Timestamp.
// The zero time becomes "".
func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return timestamppb.New(t).AsTime().Format(time.RFC3339Nano)
}

func stringList(values []string) []interface{} {
	list := make([]interface{}, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	return list
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func toStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
