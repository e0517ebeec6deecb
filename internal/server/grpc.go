package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/arrakis/arrakis-server-go/internal/game"
	"github.com/arrakis/arrakis-server-go/internal/game/data"
	"github.com/arrakis/arrakis-server-go/internal/game/rules"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "arrakis.v1.Engine"

// HostPasswordHeader carries the host password on host-only calls.
const HostPasswordHeader = "x-arrakis-host-password"

const errorDomain = "arrakis"

// EngineServer is the gRPC surface of the match manager. Requests and
// responses are google.protobuf.Struct messages.
type EngineServer interface {
	CreateMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMatches(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	View(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Admissible(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Undo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IssueSeatTokens(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type method func(EngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call method) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(EngineServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateMatch", EngineServer.CreateMatch),
		unary("ListMatches", EngineServer.ListMatches),
		unary("Submit", EngineServer.Submit),
		unary("View", EngineServer.View),
		unary("Admissible", EngineServer.Admissible),
		unary("History", EngineServer.History),
		unary("Undo", EngineServer.Undo),
		unary("IssueSeatTokens", EngineServer.IssueSeatTokens),
	},
	Metadata: "arrakis/v1/engine",
}

// Register attaches s to g.
func Register(g *grpc.Server, s EngineServer) {
	g.RegisterService(&serviceDesc, s)
}

// Options configures the engine server.
type Options struct {
	// HostPasswordHash is a bcrypt hash. Empty disables host-only calls.
	HostPasswordHash string
	// MatchDefaults seeds CreateMatch; request fields override it.
	MatchDefaults game.Config
}

type arrakisServer struct {
	mgr    *game.Manager
	opts   Options
	seats  *seatTokens
	logger *zap.Logger
}

// NewEngineServer creates the gRPC implementation backed by mgr.
func NewEngineServer(mgr *game.Manager, opts Options, logger *zap.Logger) EngineServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &arrakisServer{mgr: mgr, opts: opts, seats: newSeatTokens(), logger: logger}
}

// authorizeHost checks the host password sent in metadata.
func (s *arrakisServer) authorizeHost(ctx context.Context) error {
	if s.opts.HostPasswordHash == "" {
		return status.Error(codes.PermissionDenied, "host access disabled")
	}
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(HostPasswordHeader)
	if len(values) == 0 {
		return status.Error(codes.Unauthenticated, "host password required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.opts.HostPasswordHash), []byte(values[0])); err != nil {
		s.logger.Warn("host authentication failed", zap.String("peer", extractHostFromContext(ctx)))
		return status.Error(codes.PermissionDenied, "invalid host password")
	}
	return nil
}

// authorizeSeat checks that the caller holds the seat of faction f. The host
// password is accepted in place of a seat token.
func (s *arrakisServer) authorizeSeat(ctx context.Context, id string, f data.Faction) error {
	md, _ := metadata.FromIncomingContext(ctx)
	if tokens := md.Get(SeatTokenHeader); len(tokens) > 0 {
		if s.seats.verify(id, f, tokens[0]) {
			return nil
		}
		s.logger.Warn("seat authentication failed",
			zap.String("match_id", id),
			zap.String("faction", string(f)),
			zap.String("peer", extractHostFromContext(ctx)),
		)
		return status.Errorf(codes.PermissionDenied, "seat token does not match %s", f)
	}
	if len(md.Get(HostPasswordHeader)) > 0 {
		return s.authorizeHost(ctx)
	}
	return status.Error(codes.Unauthenticated, "seat token required")
}

func (s *arrakisServer) CreateMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.authorizeHost(ctx); err != nil {
		return nil, err
	}
	fields := req.GetFields()
	cfg := s.opts.MatchDefaults
	if v, ok := fields["seed"]; ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v.GetStringValue()), 10, 64)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "seed must be a decimal int64 string: %v", err)
		}
		cfg.Seed = seed
	} else {
		seed, err := game.NewSeed()
		if err != nil {
			return nil, status.Errorf(codes.Internal, "seed: %v", err)
		}
		cfg.Seed = seed
	}
	cfg.PlayerCount = int(fields["players"].GetNumberValue())
	if v, ok := fields["version"]; ok {
		cfg.Version = rules.Version(v.GetNumberValue())
	}
	if v, ok := fields["max_turns"]; ok {
		cfg.MaxTurns = int(v.GetNumberValue())
	}
	if v, ok := fields["rules"]; ok {
		cfg.Rules = nil
		for _, r := range v.GetListValue().GetValues() {
			cfg.Rules = append(cfg.Rules, rules.Rule(r.GetStringValue()))
		}
	}

	id, err := s.mgr.Create(ctx, cfg)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info("match created over grpc",
		zap.String("match_id", id),
		zap.String("peer", extractHostFromContext(ctx)),
	)
	return structpb.NewStruct(map[string]any{"match_id": id, "seed": strconv.FormatInt(cfg.Seed, 10)})
}

func (s *arrakisServer) ListMatches(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"match_ids": anySlice(s.mgr.List())})
}

func (s *arrakisServer) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireMatchID(req)
	if err != nil {
		return nil, err
	}
	kind := strings.TrimSpace(req.GetFields()["kind"].GetStringValue())
	if kind == "" {
		return nil, status.Error(codes.InvalidArgument, "kind is required")
	}
	payload, err := json.Marshal(req.GetFields()["command"].GetStructValue().AsMap())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "command: %v", err)
	}
	cmd, err := game.DecodeCommand(game.Record{Kind: game.Kind(kind), Payload: payload})
	if err != nil {
		return nil, toStatus(err)
	}
	if game.IsHostCommand(cmd) {
		err = s.authorizeHost(ctx)
	} else {
		err = s.authorizeSeat(ctx, id, cmd.Initiator())
	}
	if err != nil {
		return nil, err
	}

	view, err := s.mgr.Submit(ctx, id, cmd)
	if err != nil {
		s.logger.Debug("command rejected",
			zap.String("match_id", id),
			zap.String("kind", kind),
			zap.String("by", string(cmd.Initiator())),
			zap.Error(err),
		)
		return nil, toStatus(err)
	}
	out := map[string]any{
		"index":      view.Commands - 1,
		"phase":      view.Phase.String(),
		"main_phase": view.MainPhase.String(),
		"checksum":   view.Checksum,
	}
	if cmd.Kind() == game.KindEstablishPlayers {
		out["seat_tokens"] = s.seats.issue(id, seated(view))
	}
	return structpb.NewStruct(out)
}

func (s *arrakisServer) View(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireMatchID(req)
	if err != nil {
		return nil, err
	}
	view, err := s.mgr.View(id)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := viewToMap(view)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode view: %v", err)
	}
	return structpb.NewStruct(out)
}

func (s *arrakisServer) Admissible(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireMatchID(req)
	if err != nil {
		return nil, err
	}
	faction := data.Faction(strings.TrimSpace(req.GetFields()["faction"].GetStringValue()))
	if faction == "host" {
		faction = data.FactionNone
	}
	view, err := s.mgr.View(id)
	if err != nil {
		return nil, toStatus(err)
	}
	kinds, ok := view.Admissible[faction]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "faction %q is not seated", faction)
	}
	return structpb.NewStruct(map[string]any{"kinds": anySlice(kinds)})
}

func (s *arrakisServer) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireMatchID(req)
	if err != nil {
		return nil, err
	}
	log, err := s.mgr.Log(id)
	if err != nil {
		return nil, toStatus(err)
	}
	entries := make([]any, len(log.Entries))
	for i, e := range log.Entries {
		var cmd map[string]any
		if len(e.Record.Payload) > 0 {
			if err := json.Unmarshal(e.Record.Payload, &cmd); err != nil {
				return nil, status.Errorf(codes.Internal, "entry %d: %v", i, err)
			}
		}
		entries[i] = map[string]any{
			"index":   i,
			"kind":    string(e.Record.Kind),
			"command": cmd,
			"at":      e.At.UTC().Format(time.RFC3339Nano),
		}
	}
	return structpb.NewStruct(map[string]any{"entries": entries})
}

func (s *arrakisServer) Undo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.authorizeHost(ctx); err != nil {
		return nil, err
	}
	id, err := requireMatchID(req)
	if err != nil {
		return nil, err
	}
	v, ok := req.GetFields()["commands"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "commands is required")
	}
	if err := s.mgr.Undo(ctx, id, int(v.GetNumberValue())); err != nil {
		return nil, toStatus(err)
	}
	return s.View(ctx, req)
}

// IssueSeatTokens replaces the seat tokens of a match, for instance after a
// restart dropped them.
func (s *arrakisServer) IssueSeatTokens(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.authorizeHost(ctx); err != nil {
		return nil, err
	}
	id, err := requireMatchID(req)
	if err != nil {
		return nil, err
	}
	view, err := s.mgr.View(id)
	if err != nil {
		return nil, toStatus(err)
	}
	factions := seated(view)
	if len(factions) == 0 {
		return nil, status.Error(codes.FailedPrecondition, "no players are seated")
	}
	return structpb.NewStruct(map[string]any{"seat_tokens": s.seats.issue(id, factions)})
}

// ==================== Helper Functions ====================

func seated(v game.View) []data.Faction {
	var out []data.Faction
	for f := range v.Admissible {
		if f != data.FactionNone {
			out = append(out, f)
		}
	}
	return out
}

func requireMatchID(req *structpb.Struct) (string, error) {
	id := strings.TrimSpace(req.GetFields()["match_id"].GetStringValue())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "match_id is required")
	}
	return id, nil
}

// toStatus maps engine errors onto gRPC codes. Rejections carry their
// reason in an ErrorInfo detail.
func toStatus(err error) error {
	var rejected *game.RejectedError
	var cfgErr *game.ConfigError
	switch {
	case errors.As(err, &rejected):
		st := status.New(codes.FailedPrecondition, err.Error())
		detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
			Reason:   string(rejected.Reason),
			Domain:   errorDomain,
			Metadata: map[string]string{"kind": string(rejected.Kind)},
		})
		if derr != nil {
			return st.Err()
		}
		return detailed.Err()
	case errors.As(err, &cfgErr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, game.ErrMatchNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, game.ErrUnknownKind):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, game.ErrUndoRange):
		return status.Error(codes.OutOfRange, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// RejectionReason extracts the rejection reason from a gRPC error, or "".
func RejectionReason(err error) game.Reason {
	for _, d := range status.Convert(err).Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == errorDomain {
			return game.Reason(info.GetReason())
		}
	}
	return ""
}

func viewToMap(v game.View) (map[string]any, error) {
	admissible := make(map[string]any, len(v.Admissible))
	for f, kinds := range v.Admissible {
		key := string(f)
		if f == data.FactionNone {
			key = "host"
		}
		admissible[key] = anySlice(kinds)
	}
	reports := make([]any, len(v.Reports))
	for i, r := range v.Reports {
		var entries []any
		raw, err := json.Marshal(r.Entries)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		reports[i] = map[string]any{
			"turn":       r.Turn,
			"main_phase": r.MainPhase.String(),
			"entries":    entries,
		}
	}
	return map[string]any{
		"match_id":   v.MatchID,
		"turn":       v.Turn,
		"phase":      v.Phase.String(),
		"main_phase": v.MainPhase.String(),
		"awaited":    anySlice(v.Awaited),
		"admissible": admissible,
		"commands":   v.Commands,
		"checksum":   v.Checksum,
		"winners":    anySlice(v.Winners),
		"reports":    reports,
	}, nil
}

func anySlice[T ~string](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = string(x)
	}
	return out
}

// extractHostFromContext returns the peer host of an incoming call.
func extractHostFromContext(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != net.Addr(nil) {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
