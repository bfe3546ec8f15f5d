// Package mcp exposes the field-extraction engine as MCP tools over
// standard I/O, for interactive use alongside the batch pipeline.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tradeops/formscan/internal/config"
	"github.com/tradeops/formscan/internal/descriptions"
	"github.com/tradeops/formscan/internal/schema"
)

// Recognizer produces OCR text for a PDF. Satisfied by ocr.Engine.
type Recognizer interface {
	Recognize(ctx context.Context, pdfData []byte) (string, error)
}

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	mapper     *schema.Mapper
	recognizer Recognizer
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, mapper *schema.Mapper, recognizer Recognizer) (*Server, error) {
	if mapper == nil {
		return nil, fmt.Errorf("mapper cannot be nil")
	}
	if recognizer == nil {
		return nil, fmt.Errorf("recognizer cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		mapper:     mapper,
		recognizer: recognizer,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	formMapFieldsTool := mcp.NewTool(
		"form_map_fields",
		mcp.WithDescription(descriptions.FormMapFieldsDescription),
		mcp.WithString("ocr_text",
			mcp.Required(),
			mcp.Description("Raw OCR text recovered from the scanned form"),
		),
		mcp.WithString("form_type",
			mcp.Required(),
			mcp.Description("Form-type code selecting the extraction schema (e.g. 01721)"),
		),
	)
	s.mcpServer.AddTool(formMapFieldsTool, s.handleFormMapFields)

	formScanPDFTool := mcp.NewTool(
		"form_scan_pdf",
		mcp.WithDescription(descriptions.FormScanPDFDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the scanned PDF file"),
		),
		mcp.WithString("form_type",
			mcp.Required(),
			mcp.Description("Form-type code selecting the extraction schema"),
		),
	)
	s.mcpServer.AddTool(formScanPDFTool, s.handleFormScanPDF)

	formTypesListTool := mcp.NewTool(
		"form_types_list",
		mcp.WithDescription(descriptions.FormTypesListDescription),
	)
	s.mcpServer.AddTool(formTypesListTool, s.handleFormTypesList)

	serverInfoTool := mcp.NewTool(
		"formscan_server_info",
		mcp.WithDescription(descriptions.ServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleFormMapFields(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ocrText, err := request.RequireString("ocr_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	formType, err := request.RequireString("form_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields := s.mapper.Map(ocrText, formType)
	return s.fieldsResult(formType, fields)
}

func (s *Server) handleFormScanPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	formType, err := request.RequireString("form_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot access file: %v", err)), nil
	}
	if info.Size() > s.config.MaxFileSize {
		return mcp.NewToolResultError(fmt.Sprintf("file exceeds maximum size of %d bytes", s.config.MaxFileSize)), nil
	}

	pdfData, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read file: %v", err)), nil
	}

	ocrText, err := s.recognizer.Recognize(ctx, pdfData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recognition failed: %v", err)), nil
	}

	fields := s.mapper.Map(ocrText, formType)
	return s.fieldsResult(formType, fields)
}

func (s *Server) handleFormTypesList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	types := s.mapper.KnownTypes()
	text := fmt.Sprintf("Supported form types (%d):\n", len(types))
	for _, code := range types {
		text += fmt.Sprintf("  • %s\n", code)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s - Server Information\n\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Supported form types: %s\n", strings.Join(s.mapper.KnownTypes(), ", "))
	text += fmt.Sprintf("OCR language: %s\n", s.config.Language)
	text += fmt.Sprintf("Render resolution: %d DPI\n", s.config.DPI)
	text += fmt.Sprintf("Max file size: %d MB\n\n", s.config.MaxFileSize/(1024*1024))
	text += "Tools:\n"
	text += "  • form_map_fields       Map OCR text onto structured fields\n"
	text += "  • form_scan_pdf         Render, recognize and map a scanned PDF\n"
	text += "  • form_types_list       List supported form-type codes\n"
	text += "  • formscan_server_info  This information\n\n"
	text += "Fields absent from the scan come back as the \"Not Found\" sentinel; unknown form types yield an all-sentinel record rather than an error."
	return mcp.NewToolResultText(text), nil
}

// fieldsResult renders an extracted record as indented JSON.
func (s *Server) fieldsResult(formType string, fields schema.Fields) (*mcp.CallToolResult, error) {
	payload := struct {
		FormType string        `json:"formType"`
		Fields   schema.Fields `json:"fields"`
	}{FormType: formType, Fields: fields}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode fields: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting formscan MCP server in stdio mode")
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport does not expose an HTTP listener here yet.
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
