package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
	"NewsPipeline/internal/textnorm"
)

const (
	uniqueViolation     = "23505"
	sourceURLConstraint = "articles_source_url_key"
	slugSuffixLength    = 6
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ArticleRepository persists generated articles into the CMS articles table.
type ArticleRepository struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*ArticleRepository)(nil)

// NewArticleRepository wires a sql.DB implementation.
func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// ExistsBySourceURL reports whether an article was already created from sourceURL.
func (r *ArticleRepository) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return false, nil
	}
	return r.exists(ctx, sq.Eq{"source_url": sourceURL})
}

// ExistsByTitleFragment does a case-insensitive substring match of fragment against titles.
func (r *ArticleRepository) ExistsByTitleFragment(ctx context.Context, fragment string) (bool, error) {
	if strings.TrimSpace(fragment) == "" {
		return false, nil
	}
	return r.exists(ctx, sq.ILike{"title": "%" + textnorm.EscapeLike(fragment) + "%"})
}

func (r *ArticleRepository) exists(ctx context.Context, pred sq.Sqlizer) (bool, error) {
	query, args, err := psql.Select("1").From("articles").Where(pred).
		Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("query article exists: %w", err)
	}
	return found, nil
}

// Insert stores the article and fills ID, Slug and CreatedAt. A second article for the
// same source URL yields domain.ErrDuplicate.
func (r *ArticleRepository) Insert(ctx context.Context, article domain.Article) (domain.Article, error) {
	if article.Slug == "" {
		article.Slug = NewSlug(article.Title)
	}

	var sourceURL sql.NullString
	if u := strings.TrimSpace(article.SourceURL); u != "" {
		sourceURL = sql.NullString{String: u, Valid: true}
	}
	var categoryID sql.NullInt64
	if article.CategoryID != nil {
		categoryID = sql.NullInt64{Int64: *article.CategoryID, Valid: true}
	}

	query, args, err := psql.Insert("articles").
		Columns("title", "slug", "excerpt", "content", "category_id", "featured_image",
			"source_url", "source_name", "is_published", "focus_keyword").
		Values(article.Title, article.Slug, article.Excerpt, article.Content, categoryID,
			article.FeaturedImage, sourceURL, article.SourceName, article.IsPublished, article.FocusKeyword).
		Suffix("ON CONFLICT (source_url) WHERE source_url IS NOT NULL DO NOTHING RETURNING id, created_at").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(&article.ID, &article.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Article{}, fmt.Errorf("insert %q: %w", article.SourceURL, domain.ErrDuplicate)
	case isSourceURLConflict(err):
		return domain.Article{}, fmt.Errorf("insert %q: %w", article.SourceURL, domain.ErrDuplicate)
	case err != nil:
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return article, nil
}

// NewSlug derives a URL slug from title with a short random suffix.
func NewSlug(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
	return textnorm.Slugify(title) + "-" + suffix
}

func isSourceURLConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == sourceURLConstraint
}
