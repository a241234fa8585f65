package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hari31416/multimodal-chatbot/internal/api"
	"github.com/Hari31416/multimodal-chatbot/internal/chat"
	"github.com/Hari31416/multimodal-chatbot/internal/observe"
	"github.com/Hari31416/multimodal-chatbot/internal/store"
)

const defaultServer = "http://localhost:8000"

// env bundles everything a command needs: the resolved backend client,
// the controller, the local store and the observer.
type env struct {
	obs    *observe.Observer
	store  store.Storage
	client *api.Client
	ctrl   *chat.Controller
	server string
}

func (e *env) Close() {
	e.store.Close()
	e.obs.Close()
}

func getStore() store.Storage {
	home, _ := os.UserHomeDir()
	chatDir := filepath.Join(home, ".chatbot")
	storeLayer, err := store.NewSQLiteStore(filepath.Join(chatDir, "metadata.db"))
	if err != nil {
		fmt.Printf("Failed to init store: %v\n", err)
		os.Exit(1)
	}
	return storeLayer
}

// mustEnv builds the command environment. Flags win over stored config,
// stored config wins over defaults.
func mustEnv() *env {
	var obs *observe.Observer
	if jsonLogs {
		obs = observe.NewJSON(os.Stderr, verbose)
	} else {
		obs = observe.New(os.Stderr, verbose)
	}

	storeLayer := getStore()

	server := serverURL
	if server == "" {
		server, _ = storeLayer.GetConfig("server.url")
	}
	if server == "" {
		server = defaultServer
	}

	user := userID
	if user == "" {
		user, _ = storeLayer.GetConfig("user.id")
	}
	if user == "" {
		user = "default"
	}

	client := api.New(server, user, obs)
	ctrl := chat.NewController(client, obs, chat.WithRecorder(storeLayer))

	return &env{
		obs:    obs,
		store:  storeLayer,
		client: client,
		ctrl:   ctrl,
		server: server,
	}
}
