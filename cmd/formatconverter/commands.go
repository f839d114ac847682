package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/spf13/cobra"

	"FormatConverter/internal/app"
	"FormatConverter/internal/auth"
	"FormatConverter/internal/client"
	"FormatConverter/internal/domain"
)

var (
	convertFormat   string
	convertMarkdown bool

	articleID       int64
	articleTitle    string
	articleBodyFile string

	previewMarkdown bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <article-id>",
	Short: "Convert a stored article and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid article id %q", args[0])
		}
		format, err := domain.ParseFormat(convertFormat)
		if err != nil {
			return err
		}

		return withApp(cmd.Context(), func(a *app.Application) error {
			conv, err := a.Service().Convert(cmd.Context(), id, format)
			if err != nil {
				return fmt.Errorf("%s: %w", domain.PublicMessage(err), err)
			}
			return printContent(cmd, conv.Content, convertMarkdown)
		})
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached conversions",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached AP conversion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app.Application) error {
			removed, err := a.Service().ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d cached conversions\n", removed)
			return nil
		})
	},
}

var articleCmd = &cobra.Command{
	Use:   "article",
	Short: "Manage stored articles",
}

var articlePutCmd = &cobra.Command{
	Use:   "put",
	Short: "Create or replace an article",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if articleID <= 0 {
			return fmt.Errorf("--id must be positive")
		}
		body, err := readBody(articleBodyFile)
		if err != nil {
			return err
		}

		return withApp(cmd.Context(), func(a *app.Application) error {
			err := a.Articles().Save(cmd.Context(), domain.Article{
				ID:        articleID,
				Title:     articleTitle,
				Body:      body,
				UpdatedAt: time.Now(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved article %d\n", articleID)
			return nil
		})
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <base-url> <article-id>",
	Short: "Load an article page from a running server and toggle it to AP format",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL := strings.TrimRight(args[0], "/")
		httpClient := &http.Client{Timeout: client.DefaultTimeout}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL+"/articles/"+args[1], nil)
		if err != nil {
			return err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("load article page: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("load article page: %s", resp.Status)
		}

		view, err := client.NewDocumentView(resp.Body)
		if err != nil {
			return fmt.Errorf("parse article page: %w", err)
		}
		id, ok := view.ArticleID()
		if !ok {
			return fmt.Errorf("article page has no toggle widget")
		}

		widget := client.New(id, client.NewHTTPFetcher(baseURL, view.Token(), httpClient), view, client.Options{
			OnFormatChanged: func(id int64, format domain.Format) {
				fmt.Fprintf(cmd.ErrOrStderr(), "article %d switched to %s\n", id, format)
			},
		})
		widget.Click()
		widget.Wait()

		if state := widget.State(); state.Status == client.StatusError {
			return fmt.Errorf("conversion failed: %s", state.Message)
		}
		return printContent(cmd, view.Content(), previewMarkdown)
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", string(domain.FormatAP), "target format (original or ap)")
	convertCmd.Flags().BoolVar(&convertMarkdown, "markdown", false, "print the result as Markdown instead of HTML")

	cacheCmd.AddCommand(cacheClearCmd)

	articlePutCmd.Flags().Int64Var(&articleID, "id", 0, "article id")
	articlePutCmd.Flags().StringVar(&articleTitle, "title", "", "article title")
	articlePutCmd.Flags().StringVar(&articleBodyFile, "body-file", "-", "file holding the article body, - for stdin")
	_ = articlePutCmd.MarkFlagRequired("id")
	_ = articlePutCmd.MarkFlagRequired("title")
	articleCmd.AddCommand(articlePutCmd)

	previewCmd.Flags().BoolVar(&previewMarkdown, "markdown", false, "print the converted article as Markdown")
}

func readBody(path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read article body: %w", err)
	}
	return string(raw), nil
}

func printContent(cmd *cobra.Command, content string, markdown bool) error {
	if markdown {
		converted, err := toMarkdown(content)
		if err != nil {
			return err
		}
		content = converted
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(content))
	return err
}

func toMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return out, nil
}
