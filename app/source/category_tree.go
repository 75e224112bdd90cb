package source

import (
	"context"

	"github.com/lysyi3m/news-importer/app/database"
)

// ChildLister is the part of the category store the tree builder needs
type ChildLister interface {
	GetChildCategories(ctx context.Context, parentID int64) ([]database.Category, error)
}

// CategoryTree maps a category ID to the IDs of its direct children.
// Every visited category has an entry, leaves map to an empty slice.
type CategoryTree map[int64][]int64

// BuildCategoryTree walks down from top and returns a new tree on every call
func BuildCategoryTree(ctx context.Context, categories ChildLister, top []database.Category) (CategoryTree, error) {
	tree := CategoryTree{}
	for _, category := range top {
		if err := addSubtree(ctx, categories, tree, category.ID); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func addSubtree(ctx context.Context, categories ChildLister, tree CategoryTree, id int64) error {
	if _, seen := tree[id]; seen {
		return nil
	}

	children, err := categories.GetChildCategories(ctx, id)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(children))
	for _, child := range children {
		ids = append(ids, child.ID)
	}
	tree[id] = ids

	for _, child := range children {
		if err := addSubtree(ctx, categories, tree, child.ID); err != nil {
			return err
		}
	}
	return nil
}
