package server

import (
	"context"
	"encoding/base64"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/core"
	"github.com/Open-AIP/OpenAIP/internal/export"
	"github.com/Open-AIP/OpenAIP/internal/metadata"
	"github.com/Open-AIP/OpenAIP/internal/pagetext"
	"github.com/Open-AIP/OpenAIP/internal/repository"
)

const planText = "BARANGAY SAN ISIDRO\nBAIP FY 2025\f" +
	"TOTAL INVESTMENT PROGRAM: 77,092,531.00\nPrepared by:\nJUAN DELA CRUZ\nBarangay Treasurer"

// startServer serves MetadataService over bufconn. withDB wires a sqlite store.
func startServer(t *testing.T, withDB bool) *grpc.ClientConn {
	t.Helper()
	ctx := context.Background()

	var (
		store    core.ArtifactStore
		docs     repository.DocumentRepository
		exporter WorkbookExporter
	)
	if withDB {
		cfg := common.NewDefaultConfig().Database
		cfg.DSN = "file:" + filepath.Join(t.TempDir(), "aip.db")
		db, err := ConnectDB(ctx, cfg, nil)
		require.NoError(t, err)
		t.Cleanup(db.Close)
		st := repository.NewStore(db, nil)
		store, docs = st, st.Documents()
		exporter = export.NewService(docs, nil)
	}
	proc := core.NewProcessor(nil,
		pagetext.NewExtractor(pagetext.Config{}, nil),
		metadata.NewResolver(metadata.DefaultConfig(), nil),
		store, "", "")

	gs, _ := NewGRPCServer(NewMetadataService(proc, docs, exporter, nil), nil)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func writePlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "san-isidro.txt")
	require.NoError(t, os.WriteFile(path, []byte(planText), 0o644))
	return path
}

func TestHealth(t *testing.T) {
	conn := startServer(t, false)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestResolveDocumentPersistsAndGetDocument(t *testing.T) {
	ctx := context.Background()
	client := NewMetadataServiceClient(startServer(t, true))

	out, err := client.ResolveDocument(ctx, mustStruct(t, map[string]any{"path": writePlan(t)}))
	require.NoError(t, err)

	m := out.AsMap()
	assert.Equal(t, "aip_artifact_v1.1.0", m["schema_version"])
	doc := m["document"].(map[string]any)
	assert.Equal(t, "Barangay San Isidro", doc["lgu"].(map[string]any)["name"])
	assert.EqualValues(t, 2025, doc["fiscal_year"])

	hash := m["source_file"].(map[string]any)["content_hash"].(string)
	require.Len(t, hash, 64)

	got, err := client.GetDocument(ctx, mustStruct(t, map[string]any{"content_hash": hash}))
	require.NoError(t, err)
	gm := got.AsMap()
	assert.Equal(t, m["aip_id"], gm["aip_id"])
	assert.Equal(t, "Barangay San Isidro", gm["lgu_name"])
	assert.EqualValues(t, 2025, gm["fiscal_year"])
	require.Contains(t, gm, "artifact")
	assert.Equal(t, m["aip_id"], gm["artifact"].(map[string]any)["aip_id"])

	wb, err := client.ExportWorkbook(ctx, mustStruct(t, map[string]any{"fiscal_year": 2025}))
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(wb.GetFields()["xlsx"].GetStringValue())
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "PK", string(data[:2]))
}

func TestResolvePages(t *testing.T) {
	client := NewMetadataServiceClient(startServer(t, false))

	req := mustStruct(t, map[string]any{"pages": []any{
		map[string]any{"text": "BARANGAY SAN ISIDRO\nBAIP FY 2025"},
		map[string]any{"page_no": 2, "text": "Prepared by:\nJUAN DELA CRUZ\nBarangay Treasurer"},
	}})
	out, err := client.ResolvePages(context.Background(), req)
	require.NoError(t, err)

	m := out.AsMap()
	doc := m["document"].(map[string]any)
	assert.Equal(t, "Barangay San Isidro", doc["lgu"].(map[string]any)["name"])
	assert.EqualValues(t, 2, doc["source"].(map[string]any)["page_count"])
}

func TestErrorCodes(t *testing.T) {
	ctx := context.Background()
	client := NewMetadataServiceClient(startServer(t, false))

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"missing path", func() error {
			_, err := client.ResolveDocument(ctx, mustStruct(t, map[string]any{}))
			return err
		}, codes.InvalidArgument},
		{"file not found", func() error {
			_, err := client.ResolveDocument(ctx, mustStruct(t, map[string]any{"path": filepath.Join(t.TempDir(), "nope.pdf")}))
			return err
		}, codes.NotFound},
		{"no pages", func() error {
			_, err := client.ResolvePages(ctx, mustStruct(t, map[string]any{"pages": []any{}}))
			return err
		}, codes.InvalidArgument},
		{"no database", func() error {
			_, err := client.GetDocument(ctx, mustStruct(t, map[string]any{"content_hash": "abc"}))
			return err
		}, codes.FailedPrecondition},
		{"export without database", func() error {
			_, err := client.ExportWorkbook(ctx, mustStruct(t, map[string]any{}))
			return err
		}, codes.FailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	client := NewMetadataServiceClient(startServer(t, true))
	_, err := client.GetDocument(context.Background(), mustStruct(t, map[string]any{"content_hash": "missing"}))
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
