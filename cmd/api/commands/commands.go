package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flatpress/core/internal/adapters/repository"
	"github.com/flatpress/core/internal/application/services"
	"github.com/flatpress/core/internal/infrastructure/config"
	"github.com/flatpress/core/internal/infrastructure/logger"
	"github.com/flatpress/core/internal/infrastructure/server"
	"github.com/flatpress/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the FlatPress server",
		Long:  "Start the FlatPress server with the HTML pages, the JSON API and all configured middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewPostCommand creates the post management command
func NewPostCommand() *cobra.Command {
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Post management commands",
		Long:  "Create, list and delete posts directly against the storage file",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all posts",
		Run: func(cmd *cobra.Command, args []string) {
			listPosts()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new post",
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			content, _ := cmd.Flags().GetString("content")
			author, _ := cmd.Flags().GetString("author")

			if title == "" {
				log.Fatal("Title is required")
			}

			createPost(title, content, author)
		},
	}

	createCmd.Flags().String("title", "", "Post title (required)")
	createCmd.Flags().String("content", "", "Post content")
	createCmd.Flags().String("author", "", "Post author")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post by id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				log.Fatalf("Invalid post id %q", args[0])
			}

			deletePost(id)
		},
	}

	postCmd.AddCommand(listCmd)
	postCmd.AddCommand(createCmd)
	postCmd.AddCommand(deleteCmd)
	return postCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print FlatPress version",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			fmt.Printf("%s %s\n", cfg.App.Name, cfg.App.Version)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	postRepo, err := repository.NewPostRepository(cfg.Storage.Path)
	if err != nil {
		appLogger.Fatal("Failed to open post storage", "error", err, "path", cfg.Storage.Path)
	}

	srv, err := server.New(cfg, postRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting FlatPress server",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Path,
		"environment", cfg.App.Environment,
	)

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatal("Server failed to start", "error", err)
	}
}

// newService builds a PostService against the configured storage file for
// the admin commands.
func newService() *services.PostService {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	postRepo, err := repository.NewPostRepository(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open post storage at %s: %v", cfg.Storage.Path, err)
	}

	return services.NewPostService(postRepo, appLogger)
}

func listPosts() {
	svc := newService()
	posts := svc.ListPosts(context.Background())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tDATE")
	for _, post := range posts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", post.ID, post.Title, post.Author, post.Date)
	}
	w.Flush()
}

func createPost(title, content, author string) {
	svc := newService()

	post, err := svc.CreatePost(context.Background(), ports.CreatePostRequest{
		Title:   title,
		Content: content,
		Author:  author,
	})
	if err != nil {
		log.Fatalf("Failed to create post: %v", err)
	}

	fmt.Printf("Post created:\n")
	fmt.Printf("  ID: %d\n", post.ID)
	fmt.Printf("  Title: %s\n", post.Title)
	if post.Author != "" {
		fmt.Printf("  Author: %s\n", post.Author)
	}
	fmt.Printf("  Date: %s\n", post.Date)
}

func deletePost(id int) {
	svc := newService()

	if err := svc.DeletePost(context.Background(), id); err != nil {
		log.Fatalf("Failed to delete post %d: %v", id, err)
	}

	fmt.Printf("Post %d deleted\n", id)
}
