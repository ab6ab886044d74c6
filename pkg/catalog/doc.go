// Package catalog serves the product catalog: browsing for customers, and
// for admins the product list, availability toggle, deletion, and the
// multi-step add and edit workflows.
package catalog
