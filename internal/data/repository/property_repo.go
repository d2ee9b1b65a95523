package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stay-nest/internal/data/entity"
	"stay-nest/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PropertyFilter narrows public property listings. Nil fields are ignored.
type PropertyFilter struct {
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
	Bedrooms  *int
	Bathrooms *int
	Amenities []string
	SortBy    string
}

var propertySortColumns = map[string]string{
	"createdAt": "p.created_at",
	"price":     "(p.price ->> 'amount')::numeric",
	"rating":    "p.rating_average",
	"views":     "p.views",
}

type PropertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Property, error)
	List(ctx context.Context, filter PropertyFilter, limit, offset int) ([]*entity.Property, error)
	Count(ctx context.Context, filter PropertyFilter) (int64, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Property, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Update(ctx context.Context, property *entity.Property) error
	UpdateImages(ctx context.Context, id uuid.UUID, images []entity.Image) error
	UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error
	IncrementViews(ctx context.Context, id uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ToggleFavorite(ctx context.Context, propertyID, userID uuid.UUID) (bool, error)
	FindFavoritesByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Property, error)
	DeleteFavoritesByUser(ctx context.Context, userID uuid.UUID) error
}

type propertyRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPropertyRepository(db database.Querier, log *zap.Logger) PropertyRepository {
	return &propertyRepository{
		db:  db,
		log: log.With(zap.String("repository", "property")),
	}
}

const favoritesCountExpr = `(SELECT COUNT(*) FROM property_favorites f WHERE f.property_id = p.id)`

const propertyColumns = `p.id, p.owner_id, p.title, p.description, p.location, p.address, p.price,
	p.max_guests, p.amenities, p.specifications, p.images, p.rules, p.status,
	p.rating_average, p.rating_count, p.views,
	` + favoritesCountExpr + ` AS favorites_count,
	p.created_at, p.updated_at, p.deleted_at`

func scanProperty(row pgx.Row) (*entity.Property, error) {
	var p entity.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.Location,
		&p.Address,
		&p.Price,
		&p.MaxGuests,
		&p.Amenities,
		&p.Specifications,
		&p.Images,
		&p.Rules,
		&p.Status,
		&p.RatingAverage,
		&p.RatingCount,
		&p.Views,
		&p.FavoritesCount,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) collect(rows pgx.Rows) ([]*entity.Property, error) {
	defer rows.Close()

	var properties []*entity.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			r.log.Error("Failed to scan property row", zap.Error(err))
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property rows: %w", err)
	}
	return properties, nil
}

func nonNilImages(images []entity.Image) []entity.Image {
	if images == nil {
		return []entity.Image{}
	}
	return images
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *propertyRepository) Create(ctx context.Context, p *entity.Property) error {
	query := `
		INSERT INTO properties (id, owner_id, title, description, location, address, price,
		                        max_guests, amenities, specifications, images, rules, status,
		                        created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.Title,
		p.Description,
		p.Location,
		p.Address,
		p.Price,
		p.MaxGuests,
		p.Amenities,
		p.Specifications,
		nonNilImages(p.Images),
		nonNilStrings(p.Rules),
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create property", zap.Error(err), zap.String("owner_id", p.OwnerID.String()))
		return fmt.Errorf("create property %s: %w", p.Title, err)
	}

	return nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	return r.findOne(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id = $1 AND p.deleted_at IS NULL`, id)
}

// FindByIDForUpdate row-locks the property until the surrounding
// transaction ends. Only meaningful on a transactional Querier.
func (r *propertyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	query := `SELECT ` + strings.Replace(propertyColumns, favoritesCountExpr, "0", 1) +
		` FROM properties p WHERE p.id = $1 AND p.deleted_at IS NULL FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *propertyRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Property, error) {
	p, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find property by ID", zap.Error(err), zap.String("property_id", id.String()))
		return nil, fmt.Errorf("find property by ID %s: %w", id.String(), err)
	}
	return p, nil
}

// buildPropertyWhere turns a filter into a WHERE clause and its arguments.
func buildPropertyWhere(filter PropertyFilter) (string, []any) {
	conds := []string{"p.deleted_at IS NULL"}
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Location != "" {
		add("p.location ILIKE '%%' || $%d || '%%'", filter.Location)
	}
	if filter.MinPrice != nil {
		add("(p.price ->> 'amount')::numeric >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("(p.price ->> 'amount')::numeric <= $%d", *filter.MaxPrice)
	}
	if filter.Bedrooms != nil {
		add("(p.specifications ->> 'bedrooms')::int = $%d", *filter.Bedrooms)
	}
	if filter.Bathrooms != nil {
		add("(p.specifications ->> 'bathrooms')::int = $%d", *filter.Bathrooms)
	}
	for _, amenity := range filter.Amenities {
		if entity.IsAmenity(amenity) {
			conds = append(conds, fmt.Sprintf("(p.amenities ->> '%s')::boolean IS TRUE", amenity))
		}
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *propertyRepository) List(ctx context.Context, filter PropertyFilter, limit, offset int) ([]*entity.Property, error) {
	where, args := buildPropertyWhere(filter)

	orderBy, ok := propertySortColumns[filter.SortBy]
	if !ok {
		orderBy = propertySortColumns["createdAt"]
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM properties p %s ORDER BY %s DESC, p.id LIMIT $%d OFFSET $%d`,
		propertyColumns, where, orderBy, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list properties", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return r.collect(rows)
}

func (r *propertyRepository) Count(ctx context.Context, filter PropertyFilter) (int64, error) {
	where, args := buildPropertyWhere(filter)

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM properties p `+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count properties", zap.Error(err))
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return count, nil
}

func (r *propertyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties p
		WHERE p.owner_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find properties by owner", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("find properties by owner %s: %w", ownerID.String(), err)
	}
	return r.collect(rows)
}

func (r *propertyRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM properties WHERE owner_id = $1 AND deleted_at IS NULL`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count properties by owner %s: %w", ownerID.String(), err)
	}
	return count, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *entity.Property) error {
	query := `
		UPDATE properties
		SET title = $2, description = $3, location = $4, address = $5, price = $6,
		    max_guests = $7, amenities = $8, specifications = $9, rules = $10,
		    status = $11, updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.Location,
		p.Address,
		p.Price,
		p.MaxGuests,
		p.Amenities,
		p.Specifications,
		nonNilStrings(p.Rules),
		p.Status,
		p.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update property", zap.Error(err), zap.String("property_id", p.ID.String()))
		return fmt.Errorf("update property %s: %w", p.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("property %s not found", p.ID.String())
	}
	return nil
}

func (r *propertyRepository) UpdateImages(ctx context.Context, id uuid.UUID, images []entity.Image) error {
	result, err := r.db.Exec(ctx,
		`UPDATE properties SET images = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		id, nonNilImages(images),
	)
	if err != nil {
		r.log.Error("Failed to update property images", zap.Error(err), zap.String("property_id", id.String()))
		return fmt.Errorf("update images of property %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("property %s not found", id.String())
	}
	return nil
}

func (r *propertyRepository) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE properties SET rating_average = $2, rating_count = $3 WHERE id = $1`,
		id, average, count,
	)
	if err != nil {
		return fmt.Errorf("update rating of property %s: %w", id.String(), err)
	}
	return nil
}

// IncrementViews bumps the counter and returns its new value.
func (r *propertyRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	var views int
	err := r.db.QueryRow(ctx,
		`UPDATE properties SET views = views + 1 WHERE id = $1 AND deleted_at IS NULL RETURNING views`, id,
	).Scan(&views)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		r.log.Warn("Failed to increment property views", zap.Error(err), zap.String("property_id", id.String()))
		return 0, fmt.Errorf("increment views of property %s: %w", id.String(), err)
	}
	return views, nil
}

// Delete removes the property row; bookings, reviews and favorites cascade.
func (r *propertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete property", zap.Error(err), zap.String("property_id", id.String()))
		return fmt.Errorf("delete property %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("property %s not found", id.String())
	}

	r.log.Info("Property deleted", zap.String("property_id", id.String()))
	return nil
}

// ToggleFavorite flips the favorite flag and reports the new state.
func (r *propertyRepository) ToggleFavorite(ctx context.Context, propertyID, userID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM property_favorites WHERE property_id = $1 AND user_id = $2`, propertyID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	if result.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO property_favorites (property_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		propertyID, userID,
	)
	if err != nil {
		r.log.Error("Failed to add favorite", zap.Error(err), zap.String("property_id", propertyID.String()))
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}

func (r *propertyRepository) FindFavoritesByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties p
		JOIN property_favorites fav ON fav.property_id = p.id
		WHERE fav.user_id = $1 AND p.deleted_at IS NULL
		ORDER BY fav.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find favorites", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find favorites of user %s: %w", userID.String(), err)
	}
	return r.collect(rows)
}

func (r *propertyRepository) DeleteFavoritesByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM property_favorites WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete favorites of user %s: %w", userID.String(), err)
	}
	return nil
}
