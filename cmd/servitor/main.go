// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/servitor"
	"github.com/poiesic/servitor/ai"
	"github.com/poiesic/servitor/prompt"
	"github.com/poiesic/servitor/schema"
	"github.com/poiesic/servitor/service"
)

func main() {
	app := &cli.App{
		Name:  "servitor",
		Usage: "Declarative LLM service orchestration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Ask the model a single question",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append(modelFlags(),
					&cli.BoolFlag{
						Name:  "stream",
						Usage: "Stream the answer token by token",
					},
					&cli.BoolFlag{
						Name:  "moderate",
						Usage: "Run a moderation check on the question first",
					},
				),
			},
			{
				Name:      "extract",
				Usage:     "Extract a structured object from text",
				ArgsUsage: "<text>",
				Action:    extractCommand,
				Flags: append(modelFlags(),
					&cli.StringFlag{
						Name:     "fields",
						Usage:    "Comma-separated field list, e.g. name:string,age:int",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "object",
						Usage: "Name of the extracted object",
						Value: "Result",
					},
				),
			},
			{
				Name:   "chat",
				Usage:  "Interactive chat with persistent session memory",
				Action: chatCommand,
				Flags: append(modelFlags(),
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory (in-memory if omitted)",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session identifier for conversation memory",
						Value: "default",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Chat model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "API token (\"none\" for local services)",
			Value: "none",
		},
	}
}

func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithChatModel(c.String("model")),
		ai.WithToken(c.String("token")),
	)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	runtime, err := servitor.NewRuntime("", servitor.WithInMemoryStorage(),
		servitor.WithAIConfig(aiConfig(c)))
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}
	defer runtime.Close()

	svc, err := runtime.NewService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	template, err := prompt.New("{{question}}")
	if err != nil {
		return err
	}

	var opts []service.MethodOption
	if c.Bool("moderate") {
		opts = append(opts, service.WithModeration())
	}
	method, err := service.NewMethod("ask", template, opts...)
	if err != nil {
		return err
	}

	ctx := context.Background()
	vars := map[string]any{"question": question}

	if c.Bool("stream") {
		stream := svc.Stream(ctx, method, vars).
			OnNext(func(token string) {
				fmt.Print(token)
			}).
			OnComplete(func(result *service.Result) {
				fmt.Printf("\n\n[%d tokens]\n", result.Usage.Total)
			}).
			OnError(func(err error) {
				fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
			})
		if err := stream.Start(); err != nil {
			return err
		}
		<-stream.Done()
		return nil
	}

	result, err := svc.Invoke(ctx, method, vars)
	if err != nil {
		return err
	}
	fmt.Println(result.Text)
	return nil
}

func extractCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("input text is required")
	}

	output, err := parseFields(c.String("object"), c.String("fields"))
	if err != nil {
		return err
	}

	runtime, err := servitor.NewRuntime("", servitor.WithInMemoryStorage(),
		servitor.WithAIConfig(aiConfig(c)))
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}
	defer runtime.Close()

	svc, err := runtime.NewService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	template, err := prompt.New("Extract the requested information from the following text:\n{{text}}")
	if err != nil {
		return err
	}
	method, err := service.NewMethod("extract", template, service.WithOutput(output))
	if err != nil {
		return err
	}

	result, err := svc.Invoke(context.Background(), method, map[string]any{"text": text})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result.Value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func chatCommand(c *cli.Context) error {
	opts := []servitor.RuntimeOption{servitor.WithAIConfig(aiConfig(c))}
	dbPath := c.String("db")
	if dbPath == "" {
		opts = append(opts, servitor.WithInMemoryStorage())
	}

	runtime, err := servitor.NewRuntime(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}
	defer runtime.Close()

	svc, err := runtime.NewService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	template, err := prompt.New("{{message}}")
	if err != nil {
		return err
	}
	method, err := service.NewMethod("chat", template)
	if err != nil {
		return err
	}

	session := c.String("session")
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Type a message, or /quit to exit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		result, err := svc.Invoke(ctx, method, map[string]any{"message": line},
			service.WithSession(session))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(result.Text)
	}
	return scanner.Err()
}

// parseFields builds an object schema from "name:type" pairs.
// Supported types: string, int, float, bool, date, time, datetime.
func parseFields(objectName, spec string) (*schema.Type, error) {
	var fields []schema.Field
	for _, pair := range strings.Split(spec, ",") {
		name, kind, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid field spec %q: expected name:type", pair)
		}

		var fieldType *schema.Type
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "string":
			fieldType = schema.String()
		case "int", "integer":
			fieldType = schema.Int()
		case "float", "number":
			fieldType = schema.Float()
		case "bool", "boolean":
			fieldType = schema.Bool()
		case "date":
			fieldType = schema.Date()
		case "time":
			fieldType = schema.Time()
		case "datetime":
			fieldType = schema.DateTime()
		default:
			return nil, fmt.Errorf("unsupported field type %q", kind)
		}
		fields = append(fields, schema.Field{Name: strings.TrimSpace(name), Type: fieldType})
	}
	return schema.Object(objectName, fields...)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
