// Package directory lists Workspace users through the Admin SDK Directory API and
// masks the records before they are shown to anyone.
package directory
