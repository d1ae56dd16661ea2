package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	bankx "github.com/pattarin/BankPilot-Conversational-Banking/agent/bank"
	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	llmx "github.com/pattarin/BankPilot-Conversational-Banking/agent/llm"
	orchestratorx "github.com/pattarin/BankPilot-Conversational-Banking/agent/orchestrator"
	ragx "github.com/pattarin/BankPilot-Conversational-Banking/agent/rag"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
	toolx "github.com/pattarin/BankPilot-Conversational-Banking/agent/tool"
	configx "github.com/pattarin/BankPilot-Conversational-Banking/pkg/config"
	_ "github.com/pattarin/BankPilot-Conversational-Banking/pkg/logger/autoload"
	openrouterx "github.com/pattarin/BankPilot-Conversational-Banking/pkg/openrouter"
)

type AppConfig struct {
	UserID           string        `envconfig:"USER_ID" default:"demo-user"`
	ConversationID   string        `envconfig:"CONVERSATION_ID" default:"local"`
	ToolTimeout      time.Duration `envconfig:"TOOL_TIMEOUT" split_words:"true" default:"15s"`
	TransactionLimit int           `envconfig:"TRANSACTION_LIMIT" split_words:"true" default:"10"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")
	store := buildBankStore(appCfg.UserID)

	ragCfg := configx.MustNew[ragx.Config]("RAG")
	connector, err := ragx.NewConnector(*ragCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("retrieval connector")
	}

	catalog := taskx.NewCatalog()

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	// Credential probe: fail at startup, not on the first turn.
	if _, err := openrouterx.NewClient(llmCfg.OpenRouterFor(llmx.RoleResponder)); err != nil {
		log.Fatal().Err(err).Msg("openrouter client")
	}
	models, err := llmx.NewRegistry(ctx, *llmCfg, catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("model registry")
	}

	gateway, err := toolx.NewGateway(appCfg.ToolTimeout,
		&toolx.BalanceTool{Store: store},
		&toolx.TransactionsTool{Store: store, Limit: appCfg.TransactionLimit},
		&toolx.LoanSubmitTool{Store: store},
		&toolx.CardBlockTool{Store: store},
		&toolx.KnowledgeSearchTool{Searcher: connector},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("tool gateway")
	}

	sessions := statex.NewRegistry()
	orch, err := orchestratorx.New(sessions, models, gateway, catalog, orchestratorx.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator")
	}

	// Conversations live only for this process; nothing is persisted.
	log.Info().Msg("banking assistant ready")
	fmt.Println(statex.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		if text == "/clear" {
			orch.ClearConversation(appCfg.ConversationID)
			fmt.Println("(conversation cleared)")
			continue
		}

		res, err := orch.ProcessMessage(ctx, appCfg.ConversationID, appCfg.UserID, text)
		switch {
		case errors.Is(err, contractx.ErrConversationBusy):
			fmt.Println(orchestratorx.BusyReply)
		case err != nil:
			log.Error().Err(err).Msg("process message")
			fmt.Println("Sorry, something went wrong. Please try again.")
		default:
			fmt.Println(res.Reply)
		}
	}
}

func buildBankStore(userID string) bankx.Store {
	cfg, err := configx.New[bankx.Config]("BANK")
	if err != nil {
		log.Warn().Err(err).Msg("bank store config unavailable, using in-memory demo records")
		mem := bankx.NewMemoryStore()
		mem.SeedDemo(userID, time.Now())
		return mem
	}

	store, err := bankx.NewPostgresStore(*cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bank store")
	}
	if err := store.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("bank store init")
	}
	return store
}
